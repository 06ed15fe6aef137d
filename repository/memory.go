package repository

import (
	"context"
	"sort"
	"sync"

	"articles-service/models"
	"articles-service/utils"
)

// MemoryArticleRepository keeps articles in process memory.
type MemoryArticleRepository struct {
	mu       sync.RWMutex
	articles map[int64]models.Article
	lastID   int64
}

func NewMemoryArticleRepository(seed ...models.Article) *MemoryArticleRepository {
	r := &MemoryArticleRepository{articles: make(map[int64]models.Article)}
	for _, a := range seed {
		r.put(a)
	}
	return r
}

// put assumes the write lock is held.
func (r *MemoryArticleRepository) put(a models.Article) models.Article {
	if a.ID == 0 {
		r.lastID++
		a.ID = r.lastID
	} else if a.ID > r.lastID {
		r.lastID = a.ID
	}
	r.articles[a.ID] = a
	return a
}

// snapshot returns the matching articles ordered by id; the read lock must be held.
func (r *MemoryArticleRepository) snapshot(keep func(models.Article) bool) []models.Article {
	out := make([]models.Article, 0, len(r.articles))
	for _, a := range r.articles {
		if keep == nil || keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryArticleRepository) FindAll(_ context.Context) ([]models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(nil), nil
}

func (r *MemoryArticleRepository) FindByID(_ context.Context, id int64) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *MemoryArticleRepository) FindByNameLike(_ context.Context, pattern string) ([]models.Article, error) {
	re := utils.CompileLike(pattern)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(func(a models.Article) bool {
		return re.MatchString(a.Name)
	}), nil
}

func (r *MemoryArticleRepository) FindAllOrderedByNameAsc(_ context.Context) ([]models.Article, error) {
	r.mu.RLock()
	out := r.snapshot(nil)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryArticleRepository) Save(_ context.Context, article models.Article) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := r.put(article)
	return &saved, nil
}

func (r *MemoryArticleRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.articles, id)
	return nil
}

func (r *MemoryArticleRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.articles)), nil
}
