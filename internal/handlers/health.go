package handlers

import (
	"net/http"

	"jishi/internal/db"

	"github.com/gin-gonic/gin"
)

// Version 构建时通过 -ldflags 注入
var Version = "dev"

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health GET /health - 存活探针，顺带 ping 数据库
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := db.Ping(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":  status,
		"version": Version,
	})
}
