package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"orevein/internal/app/public"
	"orevein/internal/store"
)

type PublicHandlers struct {
	svc   *public.Service
	store *store.Store
}

func NewPublicHandlers(svc *public.Service, st *store.Store) *PublicHandlers {
	return &PublicHandlers{svc: svc, store: st}
}

func (h *PublicHandlers) Scenes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.svc.Scenes(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		res, err := h.svc.Leaderboard(r.Context(), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

type registerRequest struct {
	Name string `json:"name"`
}

type registerResponse struct {
	PlayerID string `json:"player_id"`
	APIKey   string `json:"api_key"`
}

// Register creates a player and returns the API key exactly once; only its
// hash is stored.
func (h *PublicHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || len(req.Name) > 64 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_name")
			return
		}
		apiKey := "ok_" + strings.ToLower(store.NewID())
		id, err := h.store.CreatePlayer(r.Context(), req.Name, apiKey)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		metricPlayerRegisterTotal.Add(1)
		WriteJSON(w, http.StatusCreated, registerResponse{PlayerID: id, APIKey: apiKey})
	}
}

func (h *PublicHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		res, err := h.svc.Profile(r.Context(), player.ID)
		if err != nil {
			if errors.Is(err, public.ErrPlayerNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "player_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func (h *PublicHandlers) MySessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, ok := PlayerFromContext(r.Context())
		if !ok {
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		limit, offset := ParsePagination(r)
		res, err := h.svc.Sessions(r.Context(), player.ID, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}
