package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"guestlink/constant"
	"guestlink/internal/model"
)

var (
	ErrNotFound      = errors.New("link not found")
	ErrDuplicateCode = errors.New("short code already exists")
)

// LinkStore 游客短链存储，每次调用只涉及一条记录
type LinkStore interface {
	Create(ctx context.Context, link *model.GuestURL) error
	FindByCode(ctx context.Context, code string) (*model.GuestURL, error)
	FindByID(ctx context.Context, id string) (*model.GuestURL, error)
	UpdateLandingFlagByCode(ctx context.Context, code string, flag bool) (*model.GuestURL, error)
	UpdateLandingFlagByID(ctx context.Context, id string, flag bool) (*model.GuestURL, error)
	ListMissingMetadata(ctx context.Context, limit int) ([]model.GuestURL, error)
	UpdateMetadata(ctx context.Context, id, title, logo string) error
	MarkMetadataChecked(ctx context.Context, id string) error
}

// GormLinkStore 基于 gorm 的实现，shortUrl 唯一性由唯一索引保证
type GormLinkStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ LinkStore = (*GormLinkStore)(nil)

func NewGormLinkStore(db *gorm.DB) *GormLinkStore {
	return &GormLinkStore{db: db, now: time.Now}
}

// WithClock 替换时间来源（测试用）
func (s *GormLinkStore) WithClock(now func() time.Time) *GormLinkStore {
	s.now = now
	return s
}

func (s *GormLinkStore) Create(ctx context.Context, link *model.GuestURL) error {
	now := s.now()
	link.CreatedAt = now
	link.UpdatedAt = now
	err := s.db.WithContext(ctx).Create(link).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCode
	}
	return err
}

func (s *GormLinkStore) FindByCode(ctx context.Context, code string) (*model.GuestURL, error) {
	return s.first(ctx, byCode(code))
}

func (s *GormLinkStore) FindByID(ctx context.Context, id string) (*model.GuestURL, error) {
	return s.first(ctx, byID(id))
}

func (s *GormLinkStore) UpdateLandingFlagByCode(ctx context.Context, code string, flag bool) (*model.GuestURL, error) {
	return s.updateLandingFlag(ctx, byCode(code), flag)
}

func (s *GormLinkStore) UpdateLandingFlagByID(ctx context.Context, id string, flag bool) (*model.GuestURL, error) {
	return s.updateLandingFlag(ctx, byID(id), flag)
}

// ListMissingMetadata 查询标题或图标仍是占位值的记录，从未检查过的排在最前
func (s *GormLinkStore) ListMissingMetadata(ctx context.Context, limit int) ([]model.GuestURL, error) {
	var links []model.GuestURL
	err := s.db.WithContext(ctx).
		Where(map[string]interface{}{"title": constant.NoTitle}).
		Or(map[string]interface{}{"logo": constant.NoLogo}).
		Order("metadataCheckedAt ASC").
		Order("createdAt ASC").
		Limit(limit).
		Find(&links).Error
	return links, err
}

// UpdateMetadata 写入补抓到的元数据，同时更新 updatedAt
func (s *GormLinkStore) UpdateMetadata(ctx context.Context, id, title, logo string) error {
	now := s.now()
	return s.db.WithContext(ctx).
		Model(&model.GuestURL{}).
		Where(byID(id)).
		Updates(map[string]interface{}{
			"Title":             title,
			"Logo":              logo,
			"UpdatedAt":         now,
			"MetadataCheckedAt": now,
		}).Error
}

// MarkMetadataChecked 记录一次无结果的补抓，不改 updatedAt
func (s *GormLinkStore) MarkMetadataChecked(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&model.GuestURL{}).
		Where(byID(id)).
		UpdateColumn("metadataCheckedAt", s.now()).Error
}

// 用 map 作为条件：空值也会进入 WHERE，struct 条件的零值会被忽略
func byCode(code string) map[string]interface{} {
	return map[string]interface{}{"shortUrl": code}
}

func byID(id string) map[string]interface{} {
	return map[string]interface{}{"id": id}
}

func (s *GormLinkStore) first(ctx context.Context, cond map[string]interface{}) (*model.GuestURL, error) {
	var link model.GuestURL
	err := s.db.WithContext(ctx).Where(cond).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// updateLandingFlag 覆盖开关并总是更新 updatedAt，重复设置同一个值时间戳也会前进
// 各驱动对无变化更新的影响行数不一致，记录是否存在以回读结果为准
func (s *GormLinkStore) updateLandingFlag(ctx context.Context, cond map[string]interface{}, flag bool) (*model.GuestURL, error) {
	err := s.db.WithContext(ctx).
		Model(&model.GuestURL{}).
		Where(cond).
		Updates(map[string]interface{}{
			"UseLanding": model.LandingFlag(flag),
			"UpdatedAt":  s.now(),
		}).Error
	if err != nil {
		return nil, err
	}
	return s.first(ctx, cond)
}
