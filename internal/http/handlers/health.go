package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/inquiryos/inquiry-os/internal/http/response"
)

const version = "0.1.0"

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) Health(c *gin.Context) {
	response.OK(c, gin.H{"status": "ok", "version": version})
}

func (h *HealthHandler) Ping(c *gin.Context) {
	response.OK(c, gin.H{"message": "pong"})
}
