package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"dealcore/internal/domain"
	applog "dealcore/internal/log"
)

const genericMessage = "Something went wrong. Please try again."

// errorBody is the JSON envelope for every failed request.
type errorBody struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	ErrorCode int    `json:"errorCode"`
}

// ErrorHandler renders domain errors as 400s with their catalogue code and
// everything else as a generic 500. Internal detail only reaches the log.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		applog.Info(c, "request.rejected", map[string]any{"code": de.Code, "detail": err.Error()})
		return c.Status(de.Status).JSON(errorBody{Status: de.Status, Message: err.Error(), ErrorCode: de.Code})
	}
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		if fe.Code == fiber.StatusRequestEntityTooLarge {
			applog.Security(c, "request.too_large", nil)
		}
		return c.Status(fe.Code).JSON(errorBody{Status: fe.Code, Message: fe.Message, ErrorCode: fe.Code})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody{
		Status:    fiber.StatusInternalServerError,
		Message:   genericMessage,
		ErrorCode: domain.CodeInternal,
	})
}
