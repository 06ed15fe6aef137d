package repository

import (
	"context"

	"articles-service/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository/article")

// ArticleRepository persists and queries articles.
// Lookups that find nothing return (nil, nil).
type ArticleRepository interface {
	FindAll(ctx context.Context) ([]models.Article, error)
	FindByID(ctx context.Context, id int64) (*models.Article, error)
	// FindByNameLike takes a LIKE pattern; backslash escapes % and _.
	FindByNameLike(ctx context.Context, pattern string) ([]models.Article, error)
	// FindAllOrderedByNameAsc orders by name in binary collation, then by id.
	FindAllOrderedByNameAsc(ctx context.Context) ([]models.Article, error)
	// Save inserts when article.ID is zero and upserts by id otherwise.
	// A nil article with a nil error means nothing was written.
	Save(ctx context.Context, article models.Article) (*models.Article, error)
	DeleteByID(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

func startSpan(ctx context.Context, name, system, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", system),
		attribute.String("db.operation", operation),
	)
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
