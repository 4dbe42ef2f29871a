package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeyuni/clone-junglebook/internal/auth"
	"github.com/jeeyuni/clone-junglebook/internal/booking"
	"github.com/jeeyuni/clone-junglebook/internal/catalog"
	"github.com/jeeyuni/clone-junglebook/internal/clock"
	"github.com/jeeyuni/clone-junglebook/internal/model"
	"github.com/jeeyuni/clone-junglebook/internal/store"
)

const testJWTSecret = "handler-test-secret"

func newTestServer(t *testing.T, opts Options) (http.Handler, *store.Memory) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	mem := store.NewMemory()
	now := time.Date(2026, 8, 31, 13, 30, 0, 0, time.Local)
	svc := booking.NewService(mem, catalog.DefaultParams, clock.NewFake(now), nil, &logger)

	if opts.JWTSecret == "" {
		opts.JWTSecret = testJWTSecret
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:3000"
	}
	srv := NewServer(svc, mem, nil, opts, &logger)
	return srv.Router(), mem
}

func sessionCookie(t *testing.T, identity model.Identity) *http.Cookie {
	t.Helper()
	token, err := auth.Issue([]byte(testJWTSecret), identity, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

func doReserve(handler http.Handler, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/reserve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleSlots(t *testing.T) {
	handler, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Slots []SlotResponse `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Slots, 24)

	assert.Equal(t, "10:00", resp.Slots[0].Start)
	assert.Equal(t, "11:00", resp.Slots[0].End)
	assert.Equal(t, "past", resp.Slots[0].Status)
	assert.Equal(t, "available", resp.Slots[3].Status)
	assert.Equal(t, "23:00", resp.Slots[13].Start)
	assert.Equal(t, "00:00", resp.Slots[13].End)
}

func TestHandleReserve(t *testing.T) {
	identity := model.Identity{Key: "github:42", DisplayName: "한진우"}

	t.Run("unauthenticated gets 401 and nothing is stored", func(t *testing.T) {
		handler, mem := newTestServer(t, Options{})
		rec := doReserve(handler, `{"start":"14:00","end":"15:00"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 0, mem.Len())
	})

	t.Run("success returns 201 with the committed reservation", func(t *testing.T) {
		handler, mem := newTestServer(t, Options{})
		rec := doReserve(handler, `{"start":"14:00","end":"15:00"}`, sessionCookie(t, identity))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1, mem.Len())

		var resp struct {
			OK       bool             `json:"ok"`
			Reserved ReservedResponse `json:"reserved"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.Equal(t, "14:00", resp.Reserved.Start)
		assert.Equal(t, "15:00", resp.Reserved.End)
		assert.Equal(t, "한진우", resp.Reserved.By)
		assert.NotEmpty(t, resp.Reserved.ID)
	})

	t.Run("conflict returns 409 naming the holder", func(t *testing.T) {
		handler, _ := newTestServer(t, Options{})
		rec := doReserve(handler, `{"start":"14:00","end":"15:00"}`, sessionCookie(t, identity))
		require.Equal(t, http.StatusCreated, rec.Code)

		other := model.Identity{Key: "github:7", DisplayName: "B"}
		rec = doReserve(handler, `{"start":"14:00","end":"15:00"}`, sessionCookie(t, other))

		require.Equal(t, http.StatusConflict, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "한진우", resp["reservedBy"])
	})

	t.Run("ended slot returns 410", func(t *testing.T) {
		handler, _ := newTestServer(t, Options{})
		rec := doReserve(handler, `{"start":"10:00","end":"11:00"}`, sessionCookie(t, identity))
		assert.Equal(t, http.StatusGone, rec.Code)
	})

	t.Run("off-grid slot returns 404", func(t *testing.T) {
		handler, _ := newTestServer(t, Options{})
		rec := doReserve(handler, `{"start":"13:10","end":"14:10"}`, sessionCookie(t, identity))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("mismatched end returns 404", func(t *testing.T) {
		handler, _ := newTestServer(t, Options{})
		rec := doReserve(handler, `{"start":"14:00","end":"16:00"}`, sessionCookie(t, identity))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed time returns 400", func(t *testing.T) {
		handler, _ := newTestServer(t, Options{})
		rec := doReserve(handler, `{"start":"25:00","end":"26:00"}`, sessionCookie(t, identity))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		handler, _ := newTestServer(t, Options{})
		rec := doReserve(handler, `{"start":"14:00"}`, sessionCookie(t, identity))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields return 400", func(t *testing.T) {
		handler, _ := newTestServer(t, Options{})
		rec := doReserve(handler, `{"start":"14:00","end":"15:00","room":"big"}`, sessionCookie(t, identity))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReservedSlotAppearsInListing(t *testing.T) {
	handler, _ := newTestServer(t, Options{})
	identity := model.Identity{Key: "github:42", DisplayName: "한진우"}

	rec := doReserve(handler, `{"start":"15:00","end":"16:00"}`, sessionCookie(t, identity))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Slots []SlotResponse `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "reserved", resp.Slots[5].Status)
	assert.Equal(t, "한진우", resp.Slots[5].ReservedBy)
}

func TestHandleMe(t *testing.T) {
	handler, _ := newTestServer(t, Options{})

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user":null}`, rec.Body.String())
	})

	t.Run("logged in", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(sessionCookie(t, model.Identity{Key: "github:42", DisplayName: "한진우"}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			User *model.Identity `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.User)
		assert.Equal(t, "github:42", resp.User.Key)
	})
}

func TestHandleLogout(t *testing.T) {
	handler, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.SessionCookie, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0, "session cookie must be cleared")
}

func TestHandleExport(t *testing.T) {
	handler, _ := newTestServer(t, Options{})
	identity := model.Identity{Key: "github:42", DisplayName: "한진우"}
	rec := doReserve(handler, `{"start":"14:00","end":"15:00"}`, sessionCookie(t, identity))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reservations-2026-08-31.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestHealthEndpoints(t *testing.T) {
	handler, _ := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	handler, _ := newTestServer(t, Options{ClientOrigin: "http://localhost:3000"})

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/slots", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestReserveRateLimit(t *testing.T) {
	handler, _ := newTestServer(t, Options{ReservePerMinute: 1, ReserveBurst: 1})
	identity := model.Identity{Key: "github:42", DisplayName: "한진우"}

	rec := doReserve(handler, `{"start":"14:00","end":"15:00"}`, sessionCookie(t, identity))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doReserve(handler, `{"start":"15:00","end":"16:00"}`, sessionCookie(t, identity))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
