package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request id in and out of the API.
const HeaderRequestID = "X-Request-ID"

// APIResponse is the envelope of every response.
type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// APIError describes why a request failed.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// IdempotentData is returned when a request found its target state already reached.
type IdempotentData struct {
	Idempotent bool `json:"idempotent"`
	Result     any  `json:"result,omitempty"`
}

func successResponse(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusOK, message, data)
}

func createdResponse(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusCreated, message, data)
}

func idempotentResponse(c *fiber.Ctx, message string, result any) error {
	return respond(c, fiber.StatusOK, message, IdempotentData{Idempotent: true, Result: result})
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: requestID(c),
	})
}

func errorResponse(c *fiber.Ctx, status int, code string, message string, details map[string]any) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC(),
		RequestID: requestID(c),
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(HeaderRequestID).(string); ok && id != "" {
		return id
	}

	id := c.Get(HeaderRequestID)
	if id == "" {
		id = uuid.New().String()
	}

	c.Locals(HeaderRequestID, id)
	c.Set(HeaderRequestID, id)

	return id
}
