package handler

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guestlink/constant"
	"guestlink/internal/apperrors"
	"guestlink/internal/dto"
	"guestlink/internal/i18n"
	"guestlink/internal/interstitial"
	"guestlink/internal/service"
	"guestlink/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// PageHandler 页面处理：短链跳转入口及相关 HTML 页面
type PageHandler struct {
	links      *service.LinkService
	translator *i18n.Translator
	timings    interstitial.Timings
	baseURL    string
	logger     *zap.Logger
}

func NewPageHandler(links *service.LinkService, translator *i18n.Translator, timings interstitial.Timings, baseURL string, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		links:      links,
		translator: translator,
		timings:    timings,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Redirect GET /{code}，注册为 NoRoute，避免与 /api、/confirm 路由冲突
func (h *PageHandler) Redirect(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	code := strings.Trim(c.Request.URL.Path, "/")
	if strings.Contains(code, "/") || utils.ValidateShortCode(code) != nil {
		h.render(c, http.StatusNotFound, "not_found.html", nil)
		return
	}

	res, err := h.links.Resolve(c.Request.Context(), code)
	if err != nil {
		if apperrors.IsNotFound(err) {
			h.logger.Debug("Short code not found", zap.String("short_code", code))
			h.render(c, http.StatusNotFound, "not_found.html", nil)
			return
		}
		h.logger.Error("Failed to resolve short code",
			zap.String("short_code", code),
			zap.Error(err))
		h.render(c, http.StatusInternalServerError, "error.html", nil)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	if res.UseLandingPage {
		c.Redirect(http.StatusFound, "/confirm/"+code)
		return
	}
	c.Redirect(http.StatusFound, res.DestinationURL)
}

// Confirm GET /confirm/:code 渲染确认页，目标地址由页面自行请求
func (h *PageHandler) Confirm(c *gin.Context) {
	code := c.Param("code")
	if utils.ValidateShortCode(code) != nil {
		h.render(c, http.StatusNotFound, "not_found.html", nil)
		return
	}
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	h.render(c, http.StatusOK, "confirm.html", gin.H{
		"Code":          code,
		"CountdownFrom": h.timings.CountdownFrom,
		"TickMillis":    h.timings.Tick.Milliseconds(),
		"SplashMillis":  h.timings.SplashDelay.Milliseconds(),
	})
}

// Manage GET /manage/:id 展示链接详情，并可切换确认页开关
func (h *PageHandler) Manage(c *gin.Context) {
	id := c.Param("id")
	link, err := h.links.GetByID(c.Request.Context(), id)
	if err != nil {
		if apperrors.StatusOf(err) < http.StatusInternalServerError {
			h.render(c, http.StatusNotFound, "not_found.html", nil)
			return
		}
		h.logger.Error("Failed to load link",
			zap.String("id", id),
			zap.Error(err))
		h.render(c, http.StatusInternalServerError, "error.html", nil)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	h.render(c, http.StatusOK, "manage.html", gin.H{
		"Link":   dto.NewLinkView(link, h.baseURL),
		"NoLogo": constant.NoLogo,
	})
}

// Index GET /
func (h *PageHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", nil)
}

func (h *PageHandler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	ctx := c.Request.Context()
	data["Lang"] = h.translator.Match(c.GetHeader("Accept-Language"))
	data["T"] = func(messageID string) string {
		return h.translator.T(ctx, messageID)
	}
	c.HTML(status, name, data)
}
