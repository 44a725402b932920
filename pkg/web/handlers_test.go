package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/models"
	"github.com/edvalho/recipelint/pkg/testutil"
	"github.com/edvalho/recipelint/pkg/validation"
)

func setupTestApp() *fiber.App {
	source := contracts.Static{
		contracts.Key("salesforce", "new_record"): {
			Provider: "salesforce", Name: "new_record",
			Output: []*models.SchemaField{{Name: "id", Type: models.FieldTypeString}},
		},
		contracts.Key("salesforce", "create_record"): {
			Provider: "salesforce", Name: "create_record",
		},
	}

	handlers := NewAPIHandlers(validation.NewRunner(source, slog.Default()), source)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/validate", handlers.ValidateRecipe)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func postRecipe(t *testing.T, app *fiber.App, body []byte) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, payload
}

func TestValidateRecipe_Pass(t *testing.T) {
	app := setupTestApp()

	recipe := testutil.CreateTestRecipe("API recipe", testutil.CreateTestTrigger(
		testutil.WithChildren(testutil.CreateTestBlock(1, "a2")),
	))

	resp, payload := postRecipe(t, app, testutil.MarshalRecipe(recipe))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report validation.Report
	require.NoError(t, json.Unmarshal(payload, &report))
	assert.Equal(t, validation.VerdictPass, report.Verdict)
	assert.NotEmpty(t, report.RunID)
}

func TestValidateRecipe_FailStillReturns200(t *testing.T) {
	app := setupTestApp()

	recipe := testutil.CreateTestRecipe("Failing recipe", testutil.CreateTestTrigger(
		testutil.WithChildren(
			testutil.CreateTestBlock(1, "a2", testutil.WithInput(map[string]any{
				"note": "data.salesforce.a9.id",
			})),
		),
	))

	resp, payload := postRecipe(t, app, testutil.MarshalRecipe(recipe))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report validation.Report
	require.NoError(t, json.Unmarshal(payload, &report))
	assert.Equal(t, validation.VerdictFail, report.Verdict)
	assert.Positive(t, report.Errors)
}

func TestValidateRecipe_EmptyBody(t *testing.T) {
	app := setupTestApp()

	resp, _ := postRecipe(t, app, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidateRecipe_MalformedDocumentIsAReport(t *testing.T) {
	app := setupTestApp()

	resp, payload := postRecipe(t, app, []byte(`{"name": "No tree"}`))

	assert.Equal(t, http.StatusOK, resp.StatusCode, "structural defects are report content, not HTTP errors")

	var report validation.Report
	require.NoError(t, json.Unmarshal(payload, &report))
	assert.Equal(t, validation.VerdictFail, report.Verdict)
}

func TestErrorHandler(t *testing.T) {
	app := setupTestApp()
	app.Get("/boom", func(c fiber.Ctx) error {
		return errors.New("contract store gone")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(payload, &problem))
	assert.Equal(t, "internal_error", problem["type"])
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
