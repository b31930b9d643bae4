package controller

import (
	"strconv"

	"info-seeker-be/internal/dto"
	"info-seeker-be/internal/pkg/serverutils"
	"info-seeker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	SearchSync(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type searchController struct {
	service service.ISearchService
	audit   service.IAuditService
}

func NewSearchController(service service.ISearchService, audit service.IAuditService) ISearchController {
	return &searchController{service: service, audit: audit}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1/search")
	h.Post("", c.Submit)
	h.Post("/sync", c.SearchSync)
	h.Get("/session/:session_id", c.GetSession)
	h.Get("/history", c.History)
}

func parseSearchRequest(ctx *fiber.Ctx) (*dto.SearchRequest, error) {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *searchController) Submit(ctx *fiber.Ctx) error {
	req, err := parseSearchRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Submit(ctx.UserContext(), req)
	if err != nil {
		return err
	}

	resp := serverutils.SuccessResponse("Search accepted", res)
	resp.Code = fiber.StatusAccepted
	return ctx.Status(fiber.StatusAccepted).JSON(resp)
}

func (c *searchController) SearchSync(ctx *fiber.Ctx) error {
	req, err := parseSearchRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Search(ctx.UserContext(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Search completed", res))
}

func (c *searchController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Params("session_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *searchController) History(ctx *fiber.Ctx) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))

	rows, err := c.audit.Recent(ctx.UserContext(), limit, ctx.Query("status"))
	if err != nil {
		return err
	}

	res := make([]dto.WorkflowSessionResponse, len(rows))
	for i, row := range rows {
		res[i] = dto.WorkflowSessionResponse{
			SessionID:        row.SessionId,
			WorkflowName:     row.WorkflowName,
			Status:           row.Status,
			Query:            row.Query,
			DetectedLanguage: row.DetectedLanguage,
			StartedAt:        row.StartedAt,
			CompletedAt:      row.CompletedAt,
			Error:            row.ErrorMessage,
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get search history", res))
}
