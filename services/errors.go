package services

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every not-found error raised by the services.
var ErrNotFound = errors.New("not found")

// ArticleNotFoundError is returned when an article lookup by id finds nothing.
type ArticleNotFoundError struct {
	ID int64
}

func (e *ArticleNotFoundError) Error() string {
	return fmt.Sprintf("Article with id %d NOT FOUND", e.ID)
}

func (e *ArticleNotFoundError) Unwrap() error {
	return ErrNotFound
}
