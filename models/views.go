package models

// PublicArticle is the customer-facing shape of an Article.
type PublicArticle struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AdminArticle carries every field of an Article.
type AdminArticle struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	PurchasePrice float64 `json:"purchasePrice"`
	Margin        float64 `json:"margin"`
}

// ToPublic drops purchase price and margin.
func ToPublic(a Article) PublicArticle {
	return PublicArticle{ID: a.ID, Name: a.Name}
}

func ToAdmin(a Article) AdminArticle {
	return AdminArticle{
		ID:            a.ID,
		Name:          a.Name,
		PurchasePrice: a.PurchasePrice,
		Margin:        a.Margin,
	}
}

// Project applies one view to every article, so single items and lists share the same shaping.
// The result is never nil; an empty catalog renders as [].
func Project[T any](articles []Article, view func(Article) T) []T {
	out := make([]T, 0, len(articles))
	for _, a := range articles {
		out = append(out, view(a))
	}
	return out
}
