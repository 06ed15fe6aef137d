package services

import (
	"context"

	"articles-service/models"
	"articles-service/repository"
	"articles-service/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CreateResult tells the HTTP layer whether a record was created and under which id.
type CreateResult struct {
	ID      int64
	Created bool
}

// ArticleService is the catalog gateway: one repository call per operation, then a view.
type ArticleService struct {
	repo repository.ArticleRepository

	views   metric.Int64Counter
	created metric.Int64Counter
}

// NewArticleService wires the service and registers its instruments. The meter is resolved
// through the global provider, so it is safe to call before telemetry is configured.
func NewArticleService(repo repository.ArticleRepository) (*ArticleService, error) {
	views, err := meter.Int64Counter("articles.views",
		metric.WithDescription("Articles rendered through the public view"))
	if err != nil {
		return nil, err
	}
	created, err := meter.Int64Counter("articles.created",
		metric.WithDescription("Articles created"))
	if err != nil {
		return nil, err
	}
	_, err = meter.Int64ObservableGauge("articles.count",
		metric.WithDescription("Articles currently in the catalog"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			n, err := repo.Count(ctx)
			if err != nil {
				return err
			}
			o.Observe(n)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return &ArticleService{repo: repo, views: views, created: created}, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// List returns every article in the public view.
func (s *ArticleService) List(ctx context.Context) ([]models.PublicArticle, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.List")
	defer span.End()

	articles, err := s.repo.FindAll(ctx)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	s.views.Add(ctx, int64(len(articles)))
	return models.Project(articles, models.ToPublic), nil
}

// Get returns one article in the public view or an *ArticleNotFoundError.
func (s *ArticleService) Get(ctx context.Context, id int64) (models.PublicArticle, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.Get",
		trace.WithAttributes(attribute.Int64("article.id", id)))
	defer span.End()

	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		fail(span, err)
		return models.PublicArticle{}, err
	}
	if article == nil {
		span.SetStatus(codes.Error, "article not found")
		return models.PublicArticle{}, &ArticleNotFoundError{ID: id}
	}
	s.views.Add(ctx, 1)
	return models.ToPublic(*article), nil
}

// Search returns, unfiltered, the articles whose name contains fragment (case-sensitive).
func (s *ArticleService) Search(ctx context.Context, fragment string) ([]models.Article, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.Search",
		trace.WithAttributes(attribute.String("article.search", fragment)))
	defer span.End()

	articles, err := s.repo.FindByNameLike(ctx, utils.ContainsPattern(fragment))
	if err != nil {
		fail(span, err)
		return nil, err
	}
	if articles == nil {
		articles = []models.Article{}
	}
	return articles, nil
}

// Create stores article under a store-assigned id; any id in the payload is ignored.
func (s *ArticleService) Create(ctx context.Context, article models.Article) (CreateResult, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.Create")
	defer span.End()

	article.ID = 0
	saved, err := s.repo.Save(ctx, article)
	if err != nil {
		fail(span, err)
		return CreateResult{}, err
	}
	if saved == nil {
		span.AddEvent("nothing_created")
		return CreateResult{}, nil
	}

	span.SetAttributes(attribute.Int64("article.id", saved.ID))
	s.created.Add(ctx, 1)
	return CreateResult{ID: saved.ID, Created: true}, nil
}

// Update overwrites the article with the same id, inserting it when absent.
func (s *ArticleService) Update(ctx context.Context, article models.Article) error {
	ctx, span := tracer.Start(ctx, "ArticleService.Update",
		trace.WithAttributes(attribute.Int64("article.id", article.ID)))
	defer span.End()

	if _, err := s.repo.Save(ctx, article); err != nil {
		fail(span, err)
		return err
	}
	return nil
}

// Delete removes the article; a missing id is not an error.
func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "ArticleService.Delete",
		trace.WithAttributes(attribute.Int64("article.id", id)))
	defer span.End()

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		fail(span, err)
		return err
	}
	return nil
}

// AdminList returns every article with all fields.
func (s *ArticleService) AdminList(ctx context.Context) ([]models.AdminArticle, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.AdminList")
	defer span.End()

	articles, err := s.repo.FindAll(ctx)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	return models.Project(articles, models.ToAdmin), nil
}

// AdminListSorted is AdminList ordered by name, byte-wise ascending.
func (s *ArticleService) AdminListSorted(ctx context.Context) ([]models.AdminArticle, error) {
	ctx, span := tracer.Start(ctx, "ArticleService.AdminListSorted")
	defer span.End()

	articles, err := s.repo.FindAllOrderedByNameAsc(ctx)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	return models.Project(articles, models.ToAdmin), nil
}

// Ping checks that the repository answers.
func (s *ArticleService) Ping(ctx context.Context) error {
	_, err := s.repo.Count(ctx)
	return err
}
