package routes

import (
	"github.com/gofiber/fiber/v2"

	"articles-service/controllers"
	"articles-service/middlewares"
	"articles-service/repository"
)

// Register wires all HTTP routes. A nil idempotency store disables Idempotency-Key handling.
func Register(app *fiber.App, articles *controllers.ArticleController, idempotency repository.IdempotencyRepository) {
	app.Get("/healthz", articles.Health)

	api := app.Group("")
	if idempotency != nil {
		api.Use(middlewares.Idempotency(idempotency))
	}

	// Public catalog
	api.Get("/Articles", articles.GetArticles)
	api.Get("/Articles/:id", articles.GetArticle)
	api.Post("/Articles", articles.CreateArticle)
	api.Put("/Articles", articles.UpdateArticle)
	api.Delete("/Articles/:id", articles.DeleteArticle)

	// Diagnostic search, unfiltered
	api.Get("/test/Articles/like/:pattern", articles.SearchArticles)

	// Admin views (all fields)
	api.Get("/AdminArticles", articles.GetAdminArticles)
	api.Get("/AdminArticles/Tri", articles.GetAdminArticlesSorted)
}
