package handlers

import (
	"context"
	"log"
	"time"

	businessflow "github.com/amirphl/Tsuchinoko/business_flow"
	"github.com/amirphl/Tsuchinoko/app/dto"
	"github.com/amirphl/Tsuchinoko/utils"
	"github.com/gofiber/fiber/v3"
)

// PingHandlerInterface defines the contract for the ping counter endpoints
type PingHandlerInterface interface {
	Get(c fiber.Ctx) error
	Ping(c fiber.Ctx) error
}

type PingHandler struct {
	flow businessflow.PingCounterFlow
}

func NewPingHandler(flow businessflow.PingCounterFlow) PingHandlerInterface {
	return &PingHandler{flow: flow}
}

// Get returns the current counter state, creating it lazily on first read
// @Summary Get Ping Counter
// @Tags Ping
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /ping [get]
func (h *PingHandler) Get(c fiber.Ctx) error {
	result, err := h.flow.Get(h.createRequestContext(c, "/ping"))
	if err != nil {
		log.Println("Get ping counter failed", err)
		return h.internalError(c, "Failed to get ping counter", err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Ping counter retrieved",
		Data:    result,
	})
}

// Ping increments the counter and returns the persisted state
// @Summary Increment Ping Counter
// @Tags Ping
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /ping [post]
func (h *PingHandler) Ping(c fiber.Ctx) error {
	result, err := h.flow.Ping(h.createRequestContext(c, "/ping"))
	if err != nil {
		log.Println("Increment ping counter failed", err)
		return h.internalError(c, "Failed to increment ping counter", err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Ping counter incremented",
		Data:    result,
	})
}

func (h *PingHandler) internalError(c fiber.Ctx, message string, err error) error {
	code := "INTERNAL_ERROR"
	if businessflow.IsStorageFailure(err) {
		code = "STORAGE_FAILURE"
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: code,
		},
	})
}

func (h *PingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
