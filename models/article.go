package models

// Article is a catalog item. PurchasePrice and Margin are only exposed through AdminArticle.
type Article struct {
	ID            int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string  `json:"name" gorm:"not null;index"`
	PurchasePrice float64 `json:"purchasePrice" gorm:"column:purchase_price;not null;default:0"`
	Margin        float64 `json:"margin" gorm:"not null;default:0"`
}

func (Article) TableName() string {
	return "articles"
}
