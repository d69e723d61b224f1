package controller

import (
	"image-search-be/internal/dto"
	"image-search-be/internal/pkg/serverutils"
	"image-search-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IIndexController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type indexController struct {
	indexService service.IIndexService
}

func NewIndexController(indexService service.IIndexService) IIndexController {
	return &indexController{
		indexService: indexService,
	}
}

func (c *indexController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/index/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Delete(":folderId", c.Delete)
}

func (c *indexController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateIndexRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.indexService.CreateIndex(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create index", res))
}

func (c *indexController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	folderId, err := uuid.Parse(ctx.Params("folderId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid folder id")
	}

	res, err := c.indexService.DeleteIndex(ctx.Context(), userId, folderId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete index", res))
}
