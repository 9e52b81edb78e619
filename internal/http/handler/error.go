package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"studymate/internal/apiclient"
	"studymate/internal/http/middleware"
	"studymate/internal/identity"
	"studymate/internal/service"
)

// errorPayload is the error response body of every endpoint.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes the error envelope. message must be safe to show to users.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// validation failures raised before any backend request
var badRequests = []struct {
	err  error
	code string
}{
	{service.ErrFileRequired, "FILE_REQUIRED"},
	{service.ErrNameRequired, "NAME_REQUIRED"},
	{service.ErrUnsupportedType, "UNSUPPORTED_TYPE"},
	{service.ErrQuestionRequired, "QUESTION_REQUIRED"},
	{service.ErrMessageRequired, "MESSAGE_REQUIRED"},
	{service.ErrEmptyText, "TEXT_REQUIRED"},
	{apiclient.ErrDocumentIDRequired, "INVALID_ID"},
}

// writeServiceError maps client and service errors onto HTTP responses.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, br := range badRequests {
		if errors.Is(err, br.err) {
			return writeError(c, fiber.StatusBadRequest, br.code, br.err.Error())
		}
	}

	var (
		apiErr  *apiclient.APIError
		netErr  *apiclient.NetworkError
		provErr *identity.ProviderError
	)
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "sign in required")
	case errors.Is(err, service.ErrClipNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "audio clip not found")
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 || status >= 500 {
			status = fiber.StatusBadGateway
		}
		return writeError(c, status, "BACKEND_ERROR", apiErr.Message)
	case errors.As(err, &netErr):
		return writeError(c, fiber.StatusBadGateway, "BACKEND_UNREACHABLE", "backend unreachable")
	case errors.As(err, &provErr):
		return writeError(c, fiber.StatusBadGateway, "PROVIDER_ERROR", "identity provider error")
	case errors.Is(err, apiclient.ErrMissingResult):
		return writeError(c, fiber.StatusBadGateway, "BACKEND_ERROR", "backend returned no result")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler is the fiber error handler for errors no handler turned into a response.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
