package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"guestlink/internal/apperrors"
	"guestlink/internal/model"
	"guestlink/internal/repository"
	"guestlink/pkg/utils"
)

// ErrCodeExhausted 生成的短码全部冲突
var ErrCodeExhausted = errors.New("no free short code after max attempts")

// Resolution 短码跳转所需信息
type Resolution struct {
	DestinationURL string `json:"url"`
	UseLandingPage bool   `json:"useLanding"`
}

// LinkRef 通过短码或 id 定位链接
type LinkRef struct {
	value string
	isID  bool
}

func ByCode(code string) LinkRef {
	return LinkRef{value: strings.TrimSpace(code)}
}

func ByID(id string) LinkRef {
	return LinkRef{value: strings.TrimSpace(id), isID: true}
}

func (r LinkRef) logField() zap.Field {
	if r.isID {
		return zap.String("id", r.value)
	}
	return zap.String("short_code", r.value)
}

type LinkService struct {
	store       repository.LinkStore
	cache       *repository.LinkCache
	fetcher     Fetcher
	logger      *zap.Logger
	newCode     CodeGenerator
	maxAttempts int
}

type Option func(*LinkService)

// WithCodeGenerator 替换短码生成器（冲突测试用）
func WithCodeGenerator(gen CodeGenerator) Option {
	return func(s *LinkService) {
		s.newCode = gen
	}
}

// WithMaxAttempts 创建时最多尝试的短码个数
func WithMaxAttempts(n int) Option {
	return func(s *LinkService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewLinkService 创建链接服务，cache 可以为 nil
func NewLinkService(store repository.LinkStore, cache *repository.LinkCache, fetcher Fetcher, logger *zap.Logger, opts ...Option) *LinkService {
	s := &LinkService{
		store:       store,
		cache:       cache,
		fetcher:     fetcher,
		logger:      logger,
		newCode:     NewCode,
		maxAttempts: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create 创建短链。元数据尽力抓取；短码冲突时换新短码重试，最多 maxAttempts 次
func (s *LinkService) Create(ctx context.Context, target string) (*model.GuestURL, error) {
	target = strings.TrimSpace(target)
	if err := utils.ValidateTargetURL(target); err != nil {
		return nil, apperrors.InvalidRequestError(err.Error())
	}

	meta := s.fetcher.Fetch(ctx, target)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.SystemError(err)
		}

		link := &model.GuestURL{
			URL:        target,
			ShortURL:   s.newCode(),
			Title:      meta.Title,
			Logo:       meta.Logo,
			UseLanding: false,
		}
		err := s.store.Create(ctx, link)
		if errors.Is(err, repository.ErrDuplicateCode) {
			s.logger.Warn("Short code collision, retrying",
				zap.String("short_code", link.ShortURL),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			s.logger.Error("Failed to create link",
				zap.String("url", target),
				zap.Error(err))
			return nil, apperrors.SystemError(err)
		}

		// 清掉之前访问该短码留下的空值缓存
		s.cache.Invalidate(ctx, link.ShortURL, link.UpdatedAt)
		s.logger.Info("Link created",
			zap.String("id", link.ID),
			zap.String("short_code", link.ShortURL))
		return link, nil
	}

	s.logger.Error("Short code space exhausted",
		zap.String("url", target),
		zap.Int("attempts", s.maxAttempts))
	return nil, apperrors.Wrap(http.StatusInternalServerError, apperrors.MsgCodeExhausted, ErrCodeExhausted)
}

// Resolve 解析短码得到目标地址和确认页开关；短码不存在或目标地址已不合法都返回 NotFound
func (s *LinkService) Resolve(ctx context.Context, code string) (*Resolution, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.InvalidRequestError(apperrors.MsgMissingCode)
	}
	if err := utils.ValidateShortCode(code); err != nil {
		return nil, apperrors.NotFoundError(apperrors.MsgShortURLNotFound)
	}

	if cached, found := s.cache.Get(ctx, code); found {
		if cached == nil {
			return nil, apperrors.NotFoundError(apperrors.MsgShortURLNotFound)
		}
		return &Resolution{DestinationURL: cached.URL, UseLandingPage: cached.UseLanding}, nil
	}

	link, err := s.store.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		s.cache.SetMissing(ctx, code)
		return nil, apperrors.NotFoundError(apperrors.MsgShortURLNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to look up short code",
			zap.String("short_code", code),
			zap.Error(err))
		return nil, apperrors.SystemError(err)
	}

	if err := utils.ValidateTargetURL(link.URL); err != nil {
		s.logger.Warn("Stored destination is not a valid URL",
			zap.String("short_code", code),
			zap.String("url", link.URL))
		s.cache.SetMissing(ctx, code)
		return nil, apperrors.NotFoundError(apperrors.MsgShortURLNotFound)
	}

	s.cache.Set(ctx, code, repository.CachedLink{URL: link.URL, UseLanding: bool(link.UseLanding)}, link.UpdatedAt)
	return &Resolution{DestinationURL: link.URL, UseLandingPage: bool(link.UseLanding)}, nil
}

// DestinationURL 确认页只需要目标地址
func (s *LinkService) DestinationURL(ctx context.Context, code string) (string, error) {
	res, err := s.Resolve(ctx, code)
	if apperrors.IsNotFound(err) {
		return "", apperrors.NotFoundError(apperrors.MsgURLInfoNotFound)
	}
	if err != nil {
		return "", err
	}
	return res.DestinationURL, nil
}

// GetByID 按 id 查询完整记录，非 UUID 的 id 直接视为不存在
func (s *LinkService) GetByID(ctx context.Context, id string) (*model.GuestURL, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidRequestError(apperrors.MsgSettingInvalidID)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFoundError(apperrors.MsgLinkNotFound)
	}

	link, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFoundError(apperrors.MsgLinkNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to look up link",
			zap.String("id", id),
			zap.Error(err))
		return nil, apperrors.SystemError(err)
	}
	return link, nil
}

// SetLandingFlag 覆盖确认页开关，重复设置同一值也会更新 updatedAt，并发写入以最后一次为准
func (s *LinkService) SetLandingFlag(ctx context.Context, ref LinkRef, flag bool) (*model.GuestURL, error) {
	if ref.value == "" {
		return nil, apperrors.InvalidRequestError(invalidSettingMessage(ref))
	}

	var (
		link *model.GuestURL
		err  error
	)
	if ref.isID {
		link, err = s.store.UpdateLandingFlagByID(ctx, ref.value, flag)
	} else {
		link, err = s.store.UpdateLandingFlagByCode(ctx, ref.value, flag)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFoundError(apperrors.MsgLinkNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to update landing flag",
			ref.logField(),
			zap.Bool("use_landing", flag),
			zap.Error(err))
		return nil, apperrors.SystemError(err)
	}

	s.cache.Invalidate(ctx, link.ShortURL, link.UpdatedAt)
	s.logger.Info("Landing flag updated",
		ref.logField(),
		zap.Bool("use_landing", flag))
	return link, nil
}

func invalidSettingMessage(ref LinkRef) string {
	if ref.isID {
		return apperrors.MsgSettingInvalidID
	}
	return apperrors.MsgSettingInvalidCode
}
