package handlers

import (
	"time"

	"github.com/caroarena/moderation-backend/internal/database"
	"github.com/caroarena/moderation-backend/internal/dto"
	"github.com/caroarena/moderation-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ai services.AnalysisClient
}

func NewHealthHandler(ai services.AnalysisClient) *HealthHandler {
	return &HealthHandler{ai: ai}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	aiStatus := "ok"
	if !h.ai.HealthCheck(c.Context()) {
		aiStatus = "unreachable"
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Analysis:  aiStatus,
	})
}
