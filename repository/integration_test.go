//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"articles-service/database"
	"articles-service/models"
	"articles-service/repository"
	"articles-service/utils"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const pgPort = 54329

var testDB *gorm.DB

func TestMain(m *testing.M) {
	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(pgPort).
		Database("articles").
		Username("articles").
		Password("articles"))
	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "starting embedded postgres: %v\n", err)
		os.Exit(1)
	}

	dsn := fmt.Sprintf("host=localhost user=articles password=articles dbname=articles port=%d sslmode=disable", pgPort)
	db, err := database.Open("postgres", dsn, "silent")
	if err == nil {
		err = database.Migrate(db)
	}
	if err != nil {
		_ = pg.Stop()
		fmt.Fprintf(os.Stderr, "preparing database: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()
	_ = database.Close(db)
	_ = pg.Stop()
	os.Exit(code)
}

func reset(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.Exec("TRUNCATE articles, idempotency_keys RESTART IDENTITY").Error)
}

func implementations(t *testing.T) map[string]repository.ArticleRepository {
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	return map[string]repository.ArticleRepository{
		"gorm": repository.NewGormArticleRepository(testDB),
		"sql":  repository.NewSQLArticleRepository(sqlDB),
	}
}

func TestArticleRepositories(t *testing.T) {
	for name, repo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			reset(t)
			ctx := context.Background()

			pen, err := repo.Save(ctx, models.Article{Name: "Pen", PurchasePrice: 0.5, Margin: 0.2})
			require.NoError(t, err)
			require.NotNil(t, pen)
			assert.Equal(t, int64(1), pen.ID)

			for _, n := range []string{"Desk", "apple", "Zebra", "50% off"} {
				_, err := repo.Save(ctx, models.Article{Name: n})
				require.NoError(t, err)
			}

			got, err := repo.FindByID(ctx, pen.ID)
			require.NoError(t, err)
			assert.Equal(t, *pen, *got)

			missing, err := repo.FindByID(ctx, 999)
			require.NoError(t, err)
			assert.Nil(t, missing)

			sorted, err := repo.FindAllOrderedByNameAsc(ctx)
			require.NoError(t, err)
			var names []string
			for _, a := range sorted {
				names = append(names, a.Name)
			}
			assert.Equal(t, []string{"50% off", "Desk", "Pen", "Zebra", "apple"}, names)

			found, err := repo.FindByNameLike(ctx, utils.ContainsPattern("e"))
			require.NoError(t, err)
			assert.Len(t, found, 4)

			found, err = repo.FindByNameLike(ctx, utils.ContainsPattern("0%"))
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, "50% off", found[0].Name)

			_, err = repo.Save(ctx, models.Article{ID: pen.ID, Name: "Fountain pen", PurchasePrice: 8, Margin: 3})
			require.NoError(t, err)
			got, err = repo.FindByID(ctx, pen.ID)
			require.NoError(t, err)
			assert.Equal(t, "Fountain pen", got.Name)

			_, err = repo.Save(ctx, models.Article{ID: 100, Name: "Upserted"})
			require.NoError(t, err)
			next, err := repo.Save(ctx, models.Article{Name: "After upsert"})
			require.NoError(t, err)
			assert.Greater(t, next.ID, int64(100))

			require.NoError(t, repo.DeleteByID(ctx, pen.ID))
			require.NoError(t, repo.DeleteByID(ctx, pen.ID))

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			n, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(len(all)), n)
			assert.Equal(t, int64(6), n)
		})
	}
}

func TestArticleIDsAreNotReused(t *testing.T) {
	for name, repo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			reset(t)
			ctx := context.Background()

			var last *models.Article
			for _, n := range []string{"Pen", "Desk", "Chair"} {
				a, err := repo.Save(ctx, models.Article{Name: n})
				require.NoError(t, err)
				last = a
			}
			require.Equal(t, int64(3), last.ID)
			require.NoError(t, repo.DeleteByID(ctx, last.ID))

			// two explicit-id upserts in a row must not pull the sequence back to MAX(id)
			for i := 0; i < 2; i++ {
				_, err := repo.Save(ctx, models.Article{ID: 1, Name: "Fountain pen"})
				require.NoError(t, err)
			}
			require.NoError(t, database.Migrate(testDB))

			next, err := repo.Save(ctx, models.Article{Name: "Lamp"})
			require.NoError(t, err)
			assert.Equal(t, int64(4), next.ID)

			gone, err := repo.FindByID(ctx, 3)
			require.NoError(t, err)
			assert.Nil(t, gone)
		})
	}
}

func TestGormIdempotencyRepository(t *testing.T) {
	reset(t)
	repo := repository.NewGormIdempotencyRepository(testDB)
	ctx := context.Background()
	rec := models.IdempotencyKey{Key: "abc", RequestHash: "h", Method: "POST", Path: "/Articles"}

	_, created, err := repo.Reserve(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = repo.Reserve(ctx, rec)
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, repo.Complete(ctx, "abc", 201, "http://localhost/Articles/1", nil))
	got, _, err := repo.Reserve(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 201, got.ResponseStatus)
	assert.Equal(t, "http://localhost/Articles/1", got.ResponseLocation)

	require.NoError(t, repo.Release(ctx, "abc"))
	_, created, err = repo.Reserve(ctx, rec)
	require.NoError(t, err)
	assert.False(t, created, "completed keys are not released")
}
