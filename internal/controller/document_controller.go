package controller

import (
	"errors"

	"info-seeker-be/internal/dto"
	"info-seeker-be/internal/pkg/serverutils"
	"info-seeker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1/documents")
	h.Post("", c.Ingest)
	h.Get("/stats", c.Stats)
}

func unavailable(err error) error {
	if errors.Is(err, service.ErrKnowledgeBaseDisabled) {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return err
}

func (c *documentController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ingest(ctx.UserContext(), &req)
	if err != nil {
		return unavailable(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Document ingested", res))
}

func (c *documentController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.UserContext())
	if err != nil {
		return unavailable(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get document stats", res))
}
