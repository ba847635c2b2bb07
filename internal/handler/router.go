package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guestlink/internal/i18n"
	"guestlink/internal/interstitial"
	"guestlink/internal/middleware"
	"guestlink/internal/service"
	"guestlink/pkg/utils"
)

type RouterConfig struct {
	Links      *service.LinkService
	Translator *i18n.Translator
	Logger     *zap.Logger
	// BaseURL 接口和页面中拼接 shortLink 用
	BaseURL string
	Timings interstitial.Timings
	Ready   ReadinessCheck
}

// NewRouter 注册中间件和全部路由
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if err := utils.RegisterValidators(); err != nil {
		return nil, err
	}

	links := NewLinkHandler(cfg.Links, cfg.Translator, cfg.BaseURL)
	pages := NewPageHandler(cfg.Links, cfg.Translator, cfg.Timings, cfg.BaseURL, cfg.Logger)
	health := NewHealthHandler(cfg.Ready, cfg.Logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.GlobalErrorMiddleware(cfg.Translator, cfg.Logger))
	r.Use(middleware.ZapGinLogger(cfg.Logger))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(cfg.Translator))
	r.SetHTMLTemplate(loadTemplates())

	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	api := r.Group("/api")
	{
		api.POST("/guest/create", links.CreateGuestLink)
		api.POST("/guest/setting", links.GuestSetting)
		api.GET("/resolve-url/", links.ResolveURL)
		api.GET("/resolve-url/:code", links.ResolveURL)
		api.GET("/url-info/:code", links.URLInfo)
		api.GET("/links/:id", links.GetLink)
		api.POST("/links/:id/setting", links.LinkSetting)
	}

	r.GET("/", pages.Index)
	r.GET("/confirm/:code", pages.Confirm)
	r.GET("/manage/:id", pages.Manage)

	// 其余路径都按短码处理
	r.NoRoute(pages.Redirect)

	return r, nil
}
