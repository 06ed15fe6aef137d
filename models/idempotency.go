package models

import (
	"time"

	"gorm.io/datatypes"
)

// IdempotencyKey stores the first completed response for a given Idempotency-Key header.
type IdempotencyKey struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Key              string         `json:"key" gorm:"size:128;uniqueIndex"`
	RequestHash      string         `json:"request_hash" gorm:"size:64"` // sha256 of method|path|body
	Method           string         `json:"method" gorm:"size:10"`
	Path             string         `json:"path" gorm:"size:255"`
	ResponseStatus   int            `json:"response_status"` // 0 => pending
	ResponseLocation string         `json:"response_location" gorm:"size:512"`
	ResponseBody     datatypes.JSON `json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
}

// Pending reports whether the request holding this key has not completed yet.
func (k IdempotencyKey) Pending() bool {
	return k.ResponseStatus == 0
}
