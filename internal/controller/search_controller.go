package controller

import (
	"image-search-be/internal/dto"
	"image-search-be/internal/pkg/serverutils"
	"image-search-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	EmbedImages(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	RetryStats(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
	ingestService service.IIngestService
	indexService  service.IIndexService
}

func NewSearchController(
	searchService service.ISearchService,
	ingestService service.IIngestService,
	indexService service.IIndexService,
) ISearchController {
	return &searchController{
		searchService: searchService,
		ingestService: ingestService,
		indexService:  indexService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("embed-images", c.EmbedImages)
	h.Post("search", c.Search)
	h.Get("retry-stats", c.RetryStats)
}

func (c *searchController) EmbedImages(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.EmbedImagesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.SubmitForEmbedding(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success queue images for embedding", res))
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search images", res))
}

func (c *searchController) RetryStats(ctx *fiber.Ctx) error {
	res, err := c.indexService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get retry stats", res))
}
