package handlers

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Tsuchinoko/app/dto"
	businessflow "github.com/amirphl/Tsuchinoko/business_flow"
	"github.com/amirphl/Tsuchinoko/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// StatsHandlerInterface defines the contract for the ping stats endpoints
type StatsHandlerInterface interface {
	Query(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

type StatsHandler struct {
	flow     businessflow.PingStatsFlow
	validate *validator.Validate
}

func NewStatsHandler(flow businessflow.PingStatsFlow) StatsHandlerInterface {
	return &StatsHandler{
		flow:     flow,
		validate: validator.New(),
	}
}

// Query returns the stats buckets for a symbolic time frame
// @Summary Query Ping Stats
// @Tags PingStats
// @Produce json
// @Param time_frame query string true "Time frame" Enums(last_5_minutes, last_hour)
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /ping-stats [get]
func (h *StatsHandler) Query(c fiber.Ctx) error {
	req, ok := h.parseRequest(c)
	if !ok {
		return nil
	}

	items, err := h.flow.Query(h.createRequestContext(c, "/ping-stats"), models.TimeFrame(req.TimeFrame))
	if err != nil {
		if businessflow.IsInvalidTimeFrame(err) {
			return h.badRequest(c, "Invalid time frame", nil)
		}
		log.Println("Query ping stats failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to query ping stats",
			Error: dto.ErrorDetail{
				Code: "INTERNAL_ERROR",
			},
		})
	}

	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Ping stats retrieved",
		Data: dto.PingStatsListResponse{
			Items: items,
		},
	})
}

// Export downloads the stats buckets of a time frame as an xlsx workbook
// @Summary Export Ping Stats
// @Tags PingStats
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param time_frame query string true "Time frame" Enums(last_5_minutes, last_hour)
// @Success 200 {file} binary
// @Failure 400 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /ping-stats/export [get]
func (h *StatsHandler) Export(c fiber.Ctx) error {
	req, ok := h.parseRequest(c)
	if !ok {
		return nil
	}

	name, content, err := h.flow.Export(h.createRequestContext(c, "/ping-stats/export"), models.TimeFrame(req.TimeFrame))
	if err != nil {
		if businessflow.IsInvalidTimeFrame(err) {
			return h.badRequest(c, "Invalid time frame", nil)
		}
		log.Println("Export ping stats failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to export ping stats",
			Error: dto.ErrorDetail{
				Code: "INTERNAL_ERROR",
			},
		})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Status(fiber.StatusOK).Send(content)
}

func (h *StatsHandler) parseRequest(c fiber.Ctx) (*dto.PingStatsQueryRequest, bool) {
	req := &dto.PingStatsQueryRequest{
		TimeFrame: c.Query("time_frame"),
	}
	if err := h.validate.Struct(req); err != nil {
		_ = h.badRequest(c, "Invalid query parameters", validationDetails(err))
		return nil, false
	}
	return req, true
}

func (h *StatsHandler) badRequest(c fiber.Ctx, message string, details any) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Details: details,
		},
	})
}

func (h *StatsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}
