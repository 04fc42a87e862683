package middlewares_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"hadeed-backend/database"
	"hadeed-backend/middlewares"
	"hadeed-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Replaying a completed Idempotency-Key must return the stored response
// without running the handler a second time.
func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires postgres)")
	}

	database.Connect()
	if err := database.DB.AutoMigrate(&models.IdempotencyKey{}); err != nil {
		t.Fatalf("migrate idempotency_keys: %v", err)
	}

	var handlerRuns int32
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", "test-user")
		return c.Next()
	})
	app.Use(middlewares.Idempotency())
	app.Post("/sale", func(c *fiber.Ctx) error {
		run := atomic.AddInt32(&handlerRuns, 1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"run": run})
	})

	key := uuid.NewString()
	body := `{"customer":"Site A","amount":100}`

	send := func(payload string) *http.Response {
		t.Helper()
		req := httptest.NewRequest(fiber.MethodPost, "/sale", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", key)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp
	}

	first := send(body)
	firstBody, _ := io.ReadAll(first.Body)
	if first.StatusCode != fiber.StatusCreated {
		t.Fatalf("first request status = %d, want 201", first.StatusCode)
	}

	second := send(body)
	secondBody, _ := io.ReadAll(second.Body)

	if got := atomic.LoadInt32(&handlerRuns); got != 1 {
		t.Fatalf("handler ran %d times, want 1", got)
	}
	if second.StatusCode != first.StatusCode {
		t.Errorf("replayed status = %d, want %d", second.StatusCode, first.StatusCode)
	}
	if string(secondBody) != string(firstBody) {
		t.Errorf("replayed body = %s, want stored %s", secondBody, firstBody)
	}

	// Same key with a different request body is a conflict, not a replay.
	conflict := send(fmt.Sprintf(`{"customer":"Site B","nonce":%q}`, uuid.NewString()))
	if conflict.StatusCode != fiber.StatusConflict {
		t.Errorf("key reuse with different body status = %d, want 409", conflict.StatusCode)
	}
	if got := atomic.LoadInt32(&handlerRuns); got != 1 {
		t.Errorf("conflict ran the handler: runs = %d, want 1", got)
	}
}
