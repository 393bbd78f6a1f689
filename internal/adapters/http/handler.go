package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/melih/patchwork-docker/internal/core/ports"
)

type ContextHandler struct {
	service ports.ContextService
}

func NewContextHandler(service ports.ContextService) *ContextHandler {
	return &ContextHandler{service: service}
}

// NewApp creates the fiber application with all API routes registered.
func NewApp(service ports.ContextService) *fiber.App {
	handler := NewContextHandler(service)
	app := fiber.New(fiber.Config{
		AppName:      "patchwork",
		ErrorHandler: errorHandler,
	})

	v1 := app.Group("/api").Group("/v1")
	v1.Post("/contexts", handler.PrepareContext)
	v1.Post("/images", handler.BuildImage)
	v1.Post("/input-files", handler.InputFiles)
	return app
}

// PrepareContext assembles a build context and returns where it was written.
// The caller owns the directory afterwards.
func (h *ContextHandler) PrepareContext(c *fiber.Ctx) error {
	var req domain.PrepareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Origin == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Origin is required",
		})
	}

	path, err := h.service.Prepare(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"path": path,
	})
}

// BuildImage prepares a context and builds an image from it. This is a
// blocking operation and might take time.
func (h *ContextHandler) BuildImage(c *fiber.Ctx) error {
	var req domain.BuildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Origin == "" || req.ImageName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Origin and image name are required",
		})
	}

	if err := h.service.Build(c.Context(), req); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"image": req.ImageName,
	})
}

func (h *ContextHandler) InputFiles(c *fiber.Ctx) error {
	var req domain.PrepareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	files, err := h.service.InputFiles(req)
	if err != nil {
		return err
	}
	return c.JSON(files)
}
