package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/taskset"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"fiber error", fiber.NewError(fiber.StatusConflict, "dup"), fiber.StatusConflict},
		{"validation", &ValidationError{Fields: map[string]string{"query": "required"}}, fiber.StatusBadRequest},
		{"empty query", pipeline.ErrEmptyQuery, fiber.StatusBadRequest},
		{"missing session", fmt.Errorf("lookup: %w", contract.ErrSessionNotFound), fiber.StatusNotFound},
		{"phase timeout", &pipeline.PhaseError{Phase: "synthesis", Err: pipeline.ErrPhaseTimeout}, fiber.StatusGatewayTimeout},
		{"phase failure", &pipeline.PhaseError{Phase: "answer", Err: errors.New("model offline")}, fiber.StatusBadGateway},
		{"shutting down", taskset.ErrClosed, fiber.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

type sample struct {
	Query string `validate:"required"`
	URL   string `validate:"omitempty,url"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Query: "ramen"}))

	err := ValidateRequest(sample{URL: "not a url"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "required", ve.Fields["query"])
	assert.Equal(t, "url", ve.Fields["url"])
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/missing", func(c *fiber.Ctx) error {
		return contract.ErrSessionNotFound
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var out BaseResponse[any]
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Success)
	assert.Equal(t, "session not found", out.Message)
}
