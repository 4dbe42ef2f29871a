package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jeeyuni/clone-junglebook/internal/audit"
	"github.com/jeeyuni/clone-junglebook/internal/auth"
	"github.com/jeeyuni/clone-junglebook/internal/booking"
	"github.com/jeeyuni/clone-junglebook/internal/catalog"
	"github.com/jeeyuni/clone-junglebook/internal/metrics"
)

const stateCookie = "jb_oauth_state"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// SlotResponse is one rendered slot. Display strings appear here and nowhere
// deeper: the core works on minute offsets only.
type SlotResponse struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	Status     string `json:"status"`
	ReservedBy string `json:"reservedBy,omitempty"`
}

// handleSlots returns the ordered slot list for the current horizon.
// GET /api/slots
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")

	views, err := s.svc.SlotViews(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("resolve slot views")
		writeError(w, http.StatusInternalServerError, "failed to load slots")
		return
	}

	slots := make([]SlotResponse, 0, len(views))
	for _, v := range views {
		slots = append(slots, SlotResponse{
			Start:      catalog.FormatTimeOfDay(v.Slot.Start),
			End:        catalog.FormatTimeOfDay(v.Slot.End),
			Status:     string(v.Status),
			ReservedBy: v.ReservedBy,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

// ReserveRequest is the request body for POST /api/reserve.
type ReserveRequest struct {
	Start string `json:"start"` // Format: HH:MM
	End   string `json:"end"`   // Format: HH:MM
}

// ReservedResponse echoes a committed reservation.
type ReservedResponse struct {
	ID        string    `json:"id"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	By        string    `json:"by"`
	CreatedAt time.Time `json:"created_at"`
}

// handleReserve attempts to commit a reservation for the authenticated
// identity. POST /api/reserve
func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reserve")

	var req ReserveRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Start == "" || req.End == "" {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}

	start, err := catalog.ParseTimeOfDay(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start; expected HH:MM")
		return
	}
	end, err := catalog.ParseTimeOfDay(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end; expected HH:MM")
		return
	}

	identity, _ := auth.IdentityFromContext(r.Context())
	reservation, err := s.svc.Commit(r.Context(), start, end, identity)
	if err != nil {
		s.respondCommitError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok": true,
		"reserved": ReservedResponse{
			ID:        reservation.ID,
			Start:     catalog.FormatTimeOfDay(reservation.Start),
			End:       req.End,
			By:        reservation.DisplayName,
			CreatedAt: reservation.CreatedAt,
		},
	})
}

// respondCommitError maps the four expected commit outcomes onto statuses;
// anything else is a store-level failure and surfaces as 500.
func (s *Server) respondCommitError(w http.ResponseWriter, err error) {
	var conflict *booking.ConflictError
	switch {
	case errors.Is(err, booking.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "login required")
	case errors.Is(err, booking.ErrUnknownSlot):
		writeError(w, http.StatusNotFound, "unknown slot")
	case errors.Is(err, booking.ErrSlotExpired):
		writeError(w, http.StatusGone, "slot has already ended")
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":      "slot already reserved",
			"reservedBy": conflict.Holder,
		})
	default:
		s.log.Error().Err(err).Msg("reservation commit failed")
		writeError(w, http.StatusInternalServerError, "failed to reserve slot")
	}
}

// handleMe returns the current identity, or null when not logged in.
// GET /api/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("me")
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": identity})
}

// handleLogout clears the session cookie. POST /api/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("logout")
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleAuthLogin starts the OAuth code flow. GET /auth/login
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("auth_login")

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start login")
		return
	}
	state := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.github.AuthCodeURL(state), http.StatusFound)
}

// handleAuthCallback completes the OAuth code flow and issues the session.
// GET /auth/callback
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("auth_callback")

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "state mismatch")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	identity, err := s.github.FetchIdentity(r.Context(), code)
	if err != nil {
		s.log.Error().Err(err).Msg("oauth identity fetch failed")
		writeError(w, http.StatusBadGateway, "authentication failed")
		return
	}

	token, err := auth.Issue(s.jwtSecret, *identity, s.sessionTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("issue session token")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Info().Str("identity", identity.Key).Msg("login completed")
	http.Redirect(w, r, s.clientOrigin, http.StatusFound)
}

// handleExport streams the current horizon as an XLSX workbook.
// GET /api/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")

	views, err := s.svc.SlotViews(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("resolve slot views for export")
		writeError(w, http.StatusInternalServerError, "failed to load slots")
		return
	}
	horizon := s.svc.CurrentCatalog().Horizon()
	reservations, err := s.store.ListByHorizon(r.Context(), horizon)
	if err != nil {
		s.log.Error().Err(err).Msg("list reservations for export")
		writeError(w, http.StatusInternalServerError, "failed to load reservations")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "reservations-"+horizon.Format("2006-01-02")+".xlsx"))
	if err := audit.ExportHorizon(views, reservations, horizon, w); err != nil {
		s.log.Error().Err(err).Msg("write export")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		http.Error(w, "store not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
