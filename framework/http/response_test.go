package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gohttp "github.com/km-arc/go-dice/framework/http"
	"github.com/km-arc/go-dice/framework/http/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	return m
}

// ── JSON ──────────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q want application/json", ct)
	}
	m := decodeJSON(t, rr)
	if m["key"] != "val" {
		t.Errorf("body key: got %v want val", m["key"])
	}
}

func TestResponse_SuccessAndCreated(t *testing.T) {
	tests := []struct {
		name   string
		send   func(*gohttp.Response)
		status int
	}{
		{"Success", func(r *gohttp.Response) { r.Success([]string{"logger"}) }, http.StatusOK},
		{"Created", func(r *gohttp.Response) { r.Created([]string{"logger"}) }, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.send(res)
			if rr.Code != tt.status {
				t.Errorf("status: got %d want %d", rr.Code, tt.status)
			}
			data, ok := decodeJSON(t, rr)["data"].([]any)
			if !ok || len(data) != 1 || data[0] != "logger" {
				t.Errorf("data: got %v", data)
			}
		})
	}
}

func TestResponse_NoContent(t *testing.T) {
	res, rr := newResponse(t)
	res.NoContent()
	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d want 204", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("body: got %q want empty", rr.Body.String())
	}
}

// ── Errors ────────────────────────────────────────────────────────────────────

func TestResponse_ErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		send    func(*gohttp.Response)
		status  int
		message string
	}{
		{"Error", func(r *gohttp.Response) { r.Error(http.StatusTeapot, "short and stout") }, http.StatusTeapot, "short and stout"},
		{"BadRequest default", func(r *gohttp.Response) { r.BadRequest() }, http.StatusBadRequest, "Bad request."},
		{"NotFound default", func(r *gohttp.Response) { r.NotFound() }, http.StatusNotFound, "Not found."},
		{"NotFound custom", func(r *gohttp.Response) { r.NotFound("no rule for Cache") }, http.StatusNotFound, "no rule for Cache"},
		{"ServerError default", func(r *gohttp.Response) { r.ServerError() }, http.StatusInternalServerError, "Server Error."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.send(res)
			if rr.Code != tt.status {
				t.Errorf("status: got %d want %d", rr.Code, tt.status)
			}
			if m := decodeJSON(t, rr); m["message"] != tt.message {
				t.Errorf("message: got %v want %q", m["message"], tt.message)
			}
		})
	}
}

func TestResponse_Fail(t *testing.T) {
	res, rr := newResponse(t)
	res.Fail(http.StatusConflict, "cycle", gohttp.Envelope{"kind": "cycle", "path": []string{"a", "b", "a"}})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d want 409", rr.Code)
	}
	m := decodeJSON(t, rr)
	if m["message"] != "cycle" || m["kind"] != "cycle" {
		t.Errorf("body: got %v", m)
	}
	if path, _ := m["path"].([]any); len(path) != 3 {
		t.Errorf("path: got %v", m["path"])
	}
}

func TestResponse_ValidationError(t *testing.T) {
	v := validation.Make(map[string]string{"type": "9x"}, validation.Rules{"type": "identifier"})
	if !v.Fails() {
		t.Fatal("expected validation to fail")
	}

	res, rr := newResponse(t)
	res.ValidationError(v.Errors())

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d want 422", rr.Code)
	}
	errs, ok := decodeJSON(t, rr)["errors"].(map[string]any)
	if !ok {
		t.Fatal("errors key missing")
	}
	if msgs, _ := errs["type"].([]any); len(msgs) != 1 {
		t.Errorf("errors.type: got %v", errs["type"])
	}
}
