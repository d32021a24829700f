package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/ctu-developers/DSpace/internal/logging"
	"github.com/ctu-developers/DSpace/internal/service"
	"github.com/gofiber/fiber/v2"
)

// respondError maps domain errors to HTTP statuses. Storage details never
// reach the client.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrAuthorityForbidden):
		status, message = fiber.StatusForbidden, "authority is not accessible"
	case errors.Is(err, domain.ErrPermissionDenied):
		status, message = fiber.StatusUnauthorized, "administrator rights required"
	case errors.Is(err, domain.ErrNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrAlreadyExists):
		status, message = fiber.StatusConflict, err.Error()
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// ErrorHandler renders errors that escape the handlers, such as unknown routes
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		logging.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

// pageFromQuery reads limit and offset, falling back to defaults for
// missing or malformed values
func pageFromQuery(c *fiber.Ctx) service.Page {
	return service.NewPage(c.QueryInt("limit", service.DefaultLimit), c.QueryInt("offset", service.DefaultOffset))
}

// expandFromQuery splits the comma separated expand parameter
func expandFromQuery(c *fiber.Ctx) []string {
	raw := c.Query("expand")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// nameFromBody accepts a bare string, a JSON string or {"name": "..."}
func nameFromBody(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	switch {
	case strings.HasPrefix(text, `"`):
		var name string
		if err := json.Unmarshal([]byte(text), &name); err != nil {
			return "", err
		}
		return name, nil
	case strings.HasPrefix(text, "{"):
		var req struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return "", err
		}
		return req.Name, nil
	default:
		return text, nil
	}
}
