package controllers

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"articles-service/middlewares"
	"articles-service/models"
	"articles-service/services"

	"github.com/gofiber/fiber/v2"
)

// ArticleUpdateInput is the PUT /Articles payload; the id selects the record to overwrite.
type ArticleUpdateInput struct {
	ID            int64   `json:"id" validate:"required"`
	Name          string  `json:"name"`
	PurchasePrice float64 `json:"purchasePrice"`
	Margin        float64 `json:"margin"`
}

type ArticleController struct {
	service *services.ArticleService
}

func NewArticleController(service *services.ArticleService) *ArticleController {
	return &ArticleController{service: service}
}

func articleID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid article id")
	}
	return id, nil
}

// GET /Articles
func (ac *ArticleController) GetArticles(c *fiber.Ctx) error {
	articles, err := ac.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(articles)
}

// GET /Articles/:id
func (ac *ArticleController) GetArticle(c *fiber.Ctx) error {
	id, err := articleID(c)
	if err != nil {
		return err
	}
	article, err := ac.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(article)
}

// GET /test/Articles/like/:pattern
func (ac *ArticleController) SearchArticles(c *fiber.Ctx) error {
	// Params are returned raw; decode %-escapes so "50%25" searches for "50%".
	pattern := c.Params("pattern")
	if decoded, err := url.PathUnescape(pattern); err == nil {
		pattern = decoded
	}
	articles, err := ac.service.Search(c.UserContext(), pattern)
	if err != nil {
		return err
	}
	return c.JSON(articles)
}

// POST /Articles
func (ac *ArticleController) CreateArticle(c *fiber.Ctx) error {
	var in models.Article
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	res, err := ac.service.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	if !res.Created {
		return c.SendStatus(fiber.StatusNoContent)
	}

	slog.InfoContext(c.UserContext(), "article created", slog.Int64("id", res.ID))
	// non-strict routing also accepts POST /Articles/
	collection := strings.TrimRight(c.Path(), "/")
	c.Location(c.BaseURL() + collection + "/" + strconv.FormatInt(res.ID, 10))
	return c.SendStatus(fiber.StatusCreated)
}

// PUT /Articles
func (ac *ArticleController) UpdateArticle(c *fiber.Ctx) error {
	var in ArticleUpdateInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	article := models.Article{
		ID:            in.ID,
		Name:          in.Name,
		PurchasePrice: in.PurchasePrice,
		Margin:        in.Margin,
	}
	if err := ac.service.Update(c.UserContext(), article); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DELETE /Articles/:id
func (ac *ArticleController) DeleteArticle(c *fiber.Ctx) error {
	id, err := articleID(c)
	if err != nil {
		return err
	}
	if err := ac.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /AdminArticles
func (ac *ArticleController) GetAdminArticles(c *fiber.Ctx) error {
	articles, err := ac.service.AdminList(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(articles)
}

// GET /AdminArticles/Tri
func (ac *ArticleController) GetAdminArticlesSorted(c *fiber.Ctx) error {
	articles, err := ac.service.AdminListSorted(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(articles)
}

// GET /healthz
func (ac *ArticleController) Health(c *fiber.Ctx) error {
	if err := ac.service.Ping(c.UserContext()); err != nil {
		slog.WarnContext(c.UserContext(), "health check failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
