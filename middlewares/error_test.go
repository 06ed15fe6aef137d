package middlewares

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"articles-service/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestErrorHandler(t *testing.T) {
	type withTag struct {
		ID int64 `validate:"required"`
	}
	validationErr := validator.New().Struct(withTag{})
	require.Error(t, validationErr)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "invalid article id"), 400, "invalid article id"},
		{"not found", &services.ArticleNotFoundError{ID: 5}, 404, "Article with id 5 NOT FOUND"},
		{"wrapped not found", fmt.Errorf("lookup: %w", &services.ArticleNotFoundError{ID: 6}), 404, "lookup: Article with id 6 NOT FOUND"},
		{"validation", validationErr, 422, "validation failed"},
		{"unknown", errors.New("dial tcp: connection refused"), 500, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := errorApp(tt.err).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, decode(t, resp)["message"])
		})
	}
}

func TestErrorHandlerValidationFields(t *testing.T) {
	type withTag struct {
		ID int64 `validate:"required"`
	}
	resp, err := errorApp(validator.New().Struct(withTag{})).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	body := decode(t, resp)
	assert.Equal(t, map[string]any{"ID": "required"}, body["errors"])
}
