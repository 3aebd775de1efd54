package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"api error", Forbidden("nope"), http.StatusForbidden, "nope"},
		{"wrapped api error", fmt.Errorf("ctx: %w", NotFound("gone")), http.StatusNotFound, "gone"},
		{"validation", validation.Errors{{Field: "name", Rule: "required"}}, http.StatusBadRequest, "Invalid input data"},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			if got.Status != tt.wantStatus || got.Message != tt.wantMsg {
				t.Errorf("From() = %d %q, want %d %q", got.Status, got.Message, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestAbort(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Abort(c, Validation(validation.Errors{{Field: "name", Rule: "required", Message: "name is required"}}))

	if !c.IsAborted() {
		t.Error("expected context to be aborted")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != "error" || body.Message != "Invalid input data" || len(body.Errors) != 1 {
		t.Errorf("unexpected body %+v", body)
	}
	if len(c.Errors) != 1 {
		t.Errorf("expected error recorded on context, got %d", len(c.Errors))
	}
}
