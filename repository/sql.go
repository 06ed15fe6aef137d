package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"articles-service/database"
	"articles-service/models"

	"github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"
)

const articlesTable = "articles"

var articleColumns = []string{"id", "name", "purchase_price", "margin"}

const upsertSuffix = `ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, ` +
	`purchase_price = EXCLUDED.purchase_price, margin = EXCLUDED.margin RETURNING id`

// SQLArticleRepository stores articles in postgres through database/sql and squirrel-built queries.
type SQLArticleRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

func NewSQLArticleRepository(db *sql.DB) *SQLArticleRepository {
	return &SQLArticleRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(db),
	}
}

func (r *SQLArticleRepository) selectArticles() squirrel.SelectBuilder {
	return r.sb.Select(articleColumns...).From(articlesTable)
}

func (r *SQLArticleRepository) findAllQuery() squirrel.SelectBuilder {
	return r.selectArticles().OrderBy("id")
}

func (r *SQLArticleRepository) findByIDQuery(id int64) squirrel.SelectBuilder {
	return r.selectArticles().Where(squirrel.Eq{"id": id})
}

func (r *SQLArticleRepository) findByNameLikeQuery(pattern string) squirrel.SelectBuilder {
	return r.selectArticles().Where(squirrel.Like{"name": pattern}).OrderBy("id")
}

func (r *SQLArticleRepository) orderedByNameQuery() squirrel.SelectBuilder {
	return r.selectArticles().OrderBy(`name COLLATE "C"`, "id")
}

func (r *SQLArticleRepository) saveQuery(a models.Article) squirrel.InsertBuilder {
	if a.ID == 0 {
		return r.sb.Insert(articlesTable).
			Columns("name", "purchase_price", "margin").
			Values(a.Name, a.PurchasePrice, a.Margin).
			Suffix("RETURNING id")
	}
	return r.sb.Insert(articlesTable).
		Columns(articleColumns...).
		Values(a.ID, a.Name, a.PurchasePrice, a.Margin).
		Suffix(upsertSuffix)
}

func (r *SQLArticleRepository) deleteQuery(id int64) squirrel.DeleteBuilder {
	return r.sb.Delete(articlesTable).Where(squirrel.Eq{"id": id})
}

func (r *SQLArticleRepository) countQuery() squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").From(articlesTable)
}

func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Name, &a.PurchasePrice, &a.Margin); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *SQLArticleRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.Article, error) {
	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	return scanArticles(rows)
}

func (r *SQLArticleRepository) FindAll(ctx context.Context) (articles []models.Article, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.FindAll", "postgresql", "SELECT")
	defer func() { endSpan(span, err) }()

	if articles, err = r.query(ctx, r.findAllQuery()); err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return articles, nil
}

func (r *SQLArticleRepository) FindByID(ctx context.Context, id int64) (_ *models.Article, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.FindByID", "postgresql", "SELECT",
		attribute.Int64("article.id", id))
	defer func() { endSpan(span, err) }()

	var a models.Article
	err = r.findByIDQuery(id).QueryRowContext(ctx).Scan(&a.ID, &a.Name, &a.PurchasePrice, &a.Margin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding article %d: %w", id, err)
	}
	return &a, nil
}

func (r *SQLArticleRepository) FindByNameLike(ctx context.Context, pattern string) (articles []models.Article, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.FindByNameLike", "postgresql", "SELECT")
	defer func() { endSpan(span, err) }()

	if articles, err = r.query(ctx, r.findByNameLikeQuery(pattern)); err != nil {
		return nil, fmt.Errorf("searching articles: %w", err)
	}
	return articles, nil
}

func (r *SQLArticleRepository) FindAllOrderedByNameAsc(ctx context.Context) (articles []models.Article, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.FindAllOrderedByNameAsc", "postgresql", "SELECT")
	defer func() { endSpan(span, err) }()

	if articles, err = r.query(ctx, r.orderedByNameQuery()); err != nil {
		return nil, fmt.Errorf("listing articles by name: %w", err)
	}
	return articles, nil
}

func (r *SQLArticleRepository) Save(ctx context.Context, article models.Article) (_ *models.Article, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.Save", "postgresql", "INSERT")
	defer func() { endSpan(span, err) }()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	var id int64
	scanErr := r.saveQuery(article).RunWith(tx).QueryRowContext(ctx).Scan(&id)
	if errors.Is(scanErr, sql.ErrNoRows) {
		_ = tx.Rollback()
		return nil, nil
	}
	if scanErr != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("saving article: %w", scanErr)
	}
	// explicit ids bypass the sequence; move it past them in the same transaction
	if article.ID != 0 {
		if _, err = tx.ExecContext(ctx, database.SyncArticleSequence); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("syncing article id sequence: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing article: %w", err)
	}
	article.ID = id
	span.SetAttributes(attribute.Int64("article.id", id))
	return &article, nil
}

func (r *SQLArticleRepository) DeleteByID(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.DeleteByID", "postgresql", "DELETE",
		attribute.Int64("article.id", id))
	defer func() { endSpan(span, err) }()

	if _, err = r.deleteQuery(id).ExecContext(ctx); err != nil {
		return fmt.Errorf("deleting article %d: %w", id, err)
	}
	return nil
}

func (r *SQLArticleRepository) Count(ctx context.Context) (n int64, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.Count", "postgresql", "SELECT")
	defer func() { endSpan(span, err) }()

	if err = r.countQuery().QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}
