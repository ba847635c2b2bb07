package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"guestlink/constant"
	"guestlink/internal/config"
)

// Metadata 目标页面的标题和图标
type Metadata struct {
	Title string
	Logo  string
}

func noMetadata() Metadata {
	return Metadata{Title: constant.NoTitle, Logo: constant.NoLogo}
}

// Fetcher 链接服务依赖的元数据抓取接口
type Fetcher interface {
	Fetch(ctx context.Context, target string) Metadata
}

var iconSelectors = []string{`link[rel="icon"]`, `link[rel="shortcut icon"]`}

// MetadataFetcher 抓取目标页面的标题和 favicon
type MetadataFetcher struct {
	client       *http.Client
	maxBodyBytes int64
	userAgent    string
	logger       *zap.Logger
}

func NewMetadataFetcher(cfg config.MetadataConfig, logger *zap.Logger) *MetadataFetcher {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2 << 20
	}
	return &MetadataFetcher{
		client:       &http.Client{Timeout: cfg.Timeout},
		maxBodyBytes: maxBody,
		userAgent:    cfg.UserAgent,
		logger:       logger,
	}
}

// Fetch 不返回错误，出现任何问题都返回占位值
func (f *MetadataFetcher) Fetch(ctx context.Context, target string) Metadata {
	meta, err := f.fetch(ctx, target)
	if err != nil {
		f.logger.Debug("Metadata fetch failed",
			zap.String("url", target),
			zap.Error(err))
		return noMetadata()
	}
	return meta
}

func (f *MetadataFetcher) fetch(ctx context.Context, target string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Metadata{}, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Metadata{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Metadata{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != "text/html" && mediaType != "application/xhtml+xml") {
			return Metadata{}, fmt.Errorf("unexpected content type %q", ct)
		}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return Metadata{}, fmt.Errorf("parse document: %w", err)
	}

	meta := noMetadata()
	if title := strings.TrimSpace(doc.Find("head > title").First().Text()); title != "" {
		meta.Title = title
	}

	hrefs := lo.FilterMap(iconSelectors, func(selector string, _ int) (string, bool) {
		href, ok := doc.Find(selector).First().Attr("href")
		href = strings.TrimSpace(href)
		return href, ok && href != ""
	})
	if href, ok := lo.First(hrefs); ok {
		if logo, ok := resolveAgainst(resp.Request.URL, href); ok {
			meta.Logo = logo
		}
	}
	return meta, nil
}

// resolveAgainst 将图标 href 按所在页面地址转成绝对 URL
func resolveAgainst(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
