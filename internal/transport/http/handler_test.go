package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"orevein/internal/mining"
	"orevein/internal/store"
)

func TestWriteMiningErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{mining.ErrLevelTooLow, http.StatusForbidden, "auto_mine_locked"},
		{mining.ErrSceneLocked, http.StatusForbidden, "scene_locked"},
		{&mining.ShortfallError{Required: 4, Actual: 1}, http.StatusConflict, "insufficient_energy"},
		{mining.ErrAlreadyActive, http.StatusConflict, "session_already_active"},
		{mining.ErrNoActiveSession, http.StatusNotFound, "no_active_session"},
		{store.ErrNotFound, http.StatusNotFound, "not_found"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeMiningError(rec, c.err)
		if rec.Code != c.status {
			t.Fatalf("%v: status = %d, want %d", c.err, rec.Code, c.status)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: bad body: %v", c.err, err)
		}
		if body["error"] != c.code {
			t.Fatalf("%v: code = %q, want %q", c.err, body["error"], c.code)
		}
	}
}

func TestParsePaginationClamps(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=9999&offset=-5", nil)
	limit, offset := ParsePagination(req)
	if limit != 500 || offset != 0 {
		t.Fatalf("got limit=%d offset=%d, want 500/0", limit, offset)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=0", nil)
	limit, _ = ParsePagination(req)
	if limit != 1 {
		t.Fatalf("limit = %d, want 1", limit)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	limit, offset = ParsePagination(req)
	if limit != 50 || offset != 0 {
		t.Fatalf("defaults = %d/%d, want 50/0", limit, offset)
	}
}

func TestCheckAdminAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Admin-Key", "secret")
	if !CheckAdminAuth(req, "secret") {
		t.Fatal("X-Admin-Key header rejected")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	if !CheckAdminAuth(req, "secret") {
		t.Fatal("bearer token rejected")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if CheckAdminAuth(req, "secret") {
		t.Fatal("wrong bearer token accepted")
	}
}
