package controller

import (
	"strconv"

	"sysassist-be/internal/dto"
	"sysassist-be/internal/pkg/serverutils"
	"sysassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICorpusController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type corpusController struct {
	ingestService service.IIngestService
}

func NewCorpusController(ingestService service.IIngestService) ICorpusController {
	return &corpusController{
		ingestService: ingestService,
	}
}

func (c *corpusController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/corpus/v1")
	h.Post("ingest", c.Ingest)
	h.Get("search", c.Search)
}

func (c *corpusController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Ingestion queued", res))
}

func (c *corpusController) Search(ctx *fiber.Ctx) error {
	req := dto.SearchRequest{
		Query: ctx.Query("q"),
	}
	if topK := ctx.Query("top_k"); topK != "" {
		n, err := strconv.Atoi(topK)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "top_k must be a number")
		}
		req.TopK = n
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search corpus", res))
}
