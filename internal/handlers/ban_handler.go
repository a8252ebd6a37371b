package handlers

import (
	"errors"

	"github.com/caroarena/moderation-backend/internal/dto"
	"github.com/caroarena/moderation-backend/internal/middleware"
	"github.com/caroarena/moderation-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BanHandler struct {
	banService *services.BanService
}

func NewBanHandler(banService *services.BanService) *BanHandler {
	return &BanHandler{banService: banService}
}

func (h *BanHandler) ApplyBan(c *fiber.Ctx) error {
	var req dto.ApplyBanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.UserID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_id is required",
		})
	}

	ban, err := h.banService.ApplyBan(req.UserID, req.ReportID, req.BanType, req.Reason, req.DurationDays)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	h.banService.SendBanNotification(ban)

	return c.Status(fiber.StatusCreated).JSON(ban)
}

func (h *BanHandler) LiftBan(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	banID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid ban ID",
		})
	}

	var req dto.LiftBanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	ban, err := h.banService.LiftBan(banID, adminID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBanNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrBanAlreadyLifted):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to lift ban",
			})
		}
	}

	return c.JSON(ban)
}

// MyBanStatus lets a player check their own standing.
func (h *BanHandler) MyBanStatus(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	status, err := h.banService.CheckUserBanStatus(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check ban status",
		})
	}

	return c.JSON(status)
}

func (h *BanHandler) UserBanStatus(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	status, err := h.banService.CheckUserBanStatus(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check ban status",
		})
	}

	return c.JSON(status)
}

func (h *BanHandler) ActiveBans(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	bans, err := h.banService.GetActiveBans(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch bans",
		})
	}

	return c.JSON(fiber.Map{"bans": bans})
}

func (h *BanHandler) BanHistory(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	bans, err := h.banService.GetBanHistory(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch ban history",
		})
	}

	return c.JSON(fiber.Map{"bans": bans})
}
