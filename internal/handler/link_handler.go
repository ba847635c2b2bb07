package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guestlink/internal/apperrors"
	"guestlink/internal/dto"
	"guestlink/internal/i18n"
	"guestlink/internal/service"
	"guestlink/response"
)

// LinkHandler /api 下的 JSON 接口
type LinkHandler struct {
	links      *service.LinkService
	translator *i18n.Translator
	baseURL    string
}

func NewLinkHandler(links *service.LinkService, translator *i18n.Translator, baseURL string) *LinkHandler {
	return &LinkHandler{
		links:      links,
		translator: translator,
		baseURL:    baseURL,
	}
}

// CreateGuestLink POST /api/guest/create
func (h *LinkHandler) CreateGuestLink(c *gin.Context) {
	var req dto.CreateGuestLinkRequest
	if !bindJSON(c, &req, apperrors.MsgInvalidBody) {
		return
	}

	link, err := h.links.Create(c.Request.Context(), req.URL)
	if err != nil {
		zap.L().Warn("Guest link creation failed",
			zap.Error(err),
			zap.String("url", req.URL),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewLinkView(link, h.baseURL))
}

// ResolveURL GET /api/resolve-url/:code
func (h *LinkHandler) ResolveURL(c *gin.Context) {
	res, err := h.links.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ResolveResponse{URL: res.DestinationURL, UseLanding: res.UseLandingPage})
}

// URLInfo GET /api/url-info/:code，供确认页使用
func (h *LinkHandler) URLInfo(c *gin.Context) {
	destination, err := h.links.DestinationURL(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.URLInfoResponse{OriginalURL: destination})
}

// GuestSetting POST /api/guest/setting
func (h *LinkHandler) GuestSetting(c *gin.Context) {
	var req dto.GuestSettingRequest
	if !bindJSON(c, &req, apperrors.MsgSettingInvalidCode) {
		return
	}

	link, err := h.links.SetLandingFlag(c.Request.Context(), service.ByCode(req.Code), req.UseLanding.Bool())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(link, h.translator.T(c.Request.Context(), "message.setting_updated")))
}

// GetLink GET /api/links/:id
func (h *LinkHandler) GetLink(c *gin.Context) {
	link, err := h.links.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(link, h.translator.T(c.Request.Context(), "message.link_retrieved")))
}

// LinkSetting POST /api/links/:id/setting
func (h *LinkHandler) LinkSetting(c *gin.Context) {
	var req dto.LinkSettingRequest
	if !bindJSON(c, &req, apperrors.MsgSettingInvalidID) {
		return
	}

	link, err := h.links.SetLandingFlag(c.Request.Context(), service.ByID(c.Param("id")), req.UseLanding.Bool())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(link, h.translator.T(c.Request.Context(), "message.setting_updated")))
}
