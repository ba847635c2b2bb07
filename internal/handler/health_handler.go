package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReadinessCheck 检查依赖是否可用
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	ready  ReadinessCheck
	logger *zap.Logger
}

func NewHealthHandler(ready ReadinessCheck, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{ready: ready, logger: logger}
}

// Healthz GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz GET /readyz
func (h *HealthHandler) Readyz(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
