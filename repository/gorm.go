package repository

import (
	"context"
	"errors"
	"fmt"

	"articles-service/database"
	"articles-service/models"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// GormArticleRepository stores articles through gorm (postgres or mysql dialector).
type GormArticleRepository struct {
	db *gorm.DB
}

func NewGormArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

func (r *GormArticleRepository) system() string {
	return r.db.Dialector.Name()
}

// nameOrder pins byte-wise ordering regardless of the database default collation.
func (r *GormArticleRepository) nameOrder() string {
	switch r.system() {
	case "postgres":
		return `name COLLATE "C" ASC`
	case "mysql":
		return "name COLLATE utf8mb4_bin ASC"
	default:
		return "name ASC"
	}
}

// nameLike keeps LIKE case-sensitive; mysql's default collations fold case.
func (r *GormArticleRepository) nameLike() string {
	if r.system() == "mysql" {
		return "name LIKE ? COLLATE utf8mb4_bin"
	}
	return "name LIKE ?"
}

func (r *GormArticleRepository) byNameLike(db *gorm.DB, pattern string) *gorm.DB {
	return db.Where(r.nameLike(), pattern).Order("id")
}

func (r *GormArticleRepository) byName(db *gorm.DB) *gorm.DB {
	return db.Order(r.nameOrder()).Order("id")
}

func (r *GormArticleRepository) FindAll(ctx context.Context) (articles []models.Article, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.FindAll", r.system(), "SELECT")
	defer func() { endSpan(span, err) }()

	if err = r.db.WithContext(ctx).Order("id").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return articles, nil
}

func (r *GormArticleRepository) FindByID(ctx context.Context, id int64) (_ *models.Article, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.FindByID", r.system(), "SELECT",
		attribute.Int64("article.id", id))
	defer func() { endSpan(span, err) }()

	var article models.Article
	err = r.db.WithContext(ctx).First(&article, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding article %d: %w", id, err)
	}
	return &article, nil
}

func (r *GormArticleRepository) FindByNameLike(ctx context.Context, pattern string) (articles []models.Article, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.FindByNameLike", r.system(), "SELECT")
	defer func() { endSpan(span, err) }()

	if err = r.byNameLike(r.db.WithContext(ctx), pattern).Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("searching articles: %w", err)
	}
	return articles, nil
}

func (r *GormArticleRepository) FindAllOrderedByNameAsc(ctx context.Context) (articles []models.Article, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.FindAllOrderedByNameAsc", r.system(), "SELECT")
	defer func() { endSpan(span, err) }()

	if err = r.byName(r.db.WithContext(ctx)).Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("listing articles by name: %w", err)
	}
	return articles, nil
}

// Save relies on gorm's Save falling back to an upsert when the UPDATE matches no row.
func (r *GormArticleRepository) Save(ctx context.Context, article models.Article) (_ *models.Article, err error) {
	op := "UPDATE"
	if article.ID == 0 {
		op = "INSERT"
	}
	ctx, span := startSpan(ctx, "ArticleRepository.Save", r.system(), op)
	defer func() { endSpan(span, err) }()

	var affected int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res *gorm.DB
		if article.ID == 0 {
			res = tx.Create(&article)
		} else {
			res = tx.Save(&article)
		}
		if res.Error != nil {
			return fmt.Errorf("saving article: %w", res.Error)
		}
		affected = res.RowsAffected
		// explicit ids bypass the sequence; move it past them in the same transaction
		if affected > 0 && op == "UPDATE" && r.system() == "postgres" {
			if err := tx.Exec(database.SyncArticleSequence).Error; err != nil {
				return fmt.Errorf("syncing article id sequence: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	span.SetAttributes(attribute.Int64("article.id", article.ID))
	return &article, nil
}

func (r *GormArticleRepository) DeleteByID(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.DeleteByID", r.system(), "DELETE",
		attribute.Int64("article.id", id))
	defer func() { endSpan(span, err) }()

	if err = r.db.WithContext(ctx).Delete(&models.Article{}, id).Error; err != nil {
		return fmt.Errorf("deleting article %d: %w", id, err)
	}
	return nil
}

func (r *GormArticleRepository) Count(ctx context.Context) (n int64, err error) {
	ctx, span := startSpan(ctx, "ArticleRepository.Count", r.system(), "SELECT")
	defer func() { endSpan(span, err) }()

	if err = r.db.WithContext(ctx).Model(&models.Article{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}
