package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/sirupsen/logrus"
)

var statusByError = []struct {
	err    error
	status int
}{
	{domain.ErrValidation, fiber.StatusBadRequest},
	{domain.ErrParse, fiber.StatusBadRequest},
	{domain.ErrUnsupportedOrigin, fiber.StatusBadRequest},
	{domain.ErrNotFound, fiber.StatusNotFound},
	{domain.ErrPatchApply, fiber.StatusConflict},
	{domain.ErrPatchFormat, fiber.StatusUnprocessableEntity},
	{domain.ErrImport, fiber.StatusBadGateway},
	{domain.ErrResolution, fiber.StatusBadGateway},
	{domain.ErrBuildFailed, fiber.StatusInternalServerError},
}

// Maps domain errors to status codes and renders them as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	} else {
		for _, candidate := range statusByError {
			if errors.Is(err, candidate.err) {
				status = candidate.status
				break
			}
		}
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"status": status,
	}).Warn("request failed")

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
