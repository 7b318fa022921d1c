package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"orevein/internal/reward"
	"orevein/internal/store"
)

type AdminHandlers struct {
	store *store.Store
}

func NewAdminHandlers(st *store.Store) *AdminHandlers {
	return &AdminHandlers{store: st}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) Players() http.HandlerFunc {
	type playerItem struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Level        int       `json:"level"`
		Experience   int64     `json:"experience"`
		Coins        int64     `json:"coins"`
		Energy       int64     `json:"energy"`
		MaxEnergy    int64     `json:"max_energy"`
		MiningCycles int64     `json:"mining_cycles"`
		CreatedAt    time.Time `json:"created_at"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		players, err := h.store.ListPlayers(r.Context(), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		items := make([]playerItem, 0, len(players))
		for _, p := range players {
			items = append(items, playerItem{
				ID: p.ID, Name: p.Name, Level: p.Level, Experience: p.Experience,
				Coins: p.Coins, Energy: p.Energy, MaxEnergy: p.MaxEnergy,
				MiningCycles: p.MiningCycles, CreatedAt: p.CreatedAt,
			})
		}
		WriteJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

type topupRequest struct {
	PlayerID string `json:"player_id"`
	Amount   int64  `json:"amount"`
}

func (h *AdminHandlers) Topup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req topupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" || req.Amount <= 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		p, err := h.store.TopUpEnergy(r.Context(), req.PlayerID, req.Amount)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "player_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"player_id":  p.ID,
			"energy":     p.Energy,
			"max_energy": p.MaxEnergy,
		})
	}
}

type createSceneRequest struct {
	Name               string             `json:"name"`
	UnlockLevel        int                `json:"unlock_level"`
	EnergyCostPerCycle int64              `json:"energy_cost_per_cycle"`
	CoinsMin           int64              `json:"coins_min"`
	CoinsMax           int64              `json:"coins_max"`
	BaseExperience     int64              `json:"base_experience"`
	Drops              []sceneDropRequest `json:"drops"`
}

type sceneDropRequest struct {
	Name   string  `json:"name"`
	Rarity string  `json:"rarity"`
	Rate   float64 `json:"rate"`
	Value  int64   `json:"value"`
}

func (h *AdminHandlers) CreateScene() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSceneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if req.Name == "" || req.EnergyCostPerCycle < 1 || req.CoinsMin < 0 || req.CoinsMax < req.CoinsMin {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		sc := store.Scene{
			Name:               req.Name,
			UnlockLevel:        req.UnlockLevel,
			EnergyCostPerCycle: req.EnergyCostPerCycle,
			CoinsMin:           req.CoinsMin,
			CoinsMax:           req.CoinsMax,
			BaseExperience:     req.BaseExperience,
		}
		for _, d := range req.Drops {
			if d.Rate < 0 || d.Rate > 1 {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_drop_rate")
				return
			}
			sc.Drops = append(sc.Drops, reward.DropEntry{
				Name:   d.Name,
				Rarity: reward.Rarity(d.Rarity),
				Rate:   d.Rate,
				Value:  d.Value,
			})
		}
		id, err := h.store.CreateScene(r.Context(), sc)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		WriteJSON(w, http.StatusCreated, map[string]any{"scene_id": id})
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	type ledgerItem struct {
		ID        string    `json:"id"`
		PlayerID  string    `json:"player_id"`
		Type      string    `json:"type"`
		Amount    int64     `json:"amount"`
		RefType   string    `json:"ref_type"`
		RefID     string    `json:"ref_id"`
		CreatedAt time.Time `json:"created_at"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		f := store.LedgerFilter{
			PlayerID:  r.URL.Query().Get("player_id"),
			SessionID: r.URL.Query().Get("session_id"),
		}
		entries, err := h.store.ListLedgerEntries(r.Context(), f, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		items := make([]ledgerItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, ledgerItem{
				ID: e.ID, PlayerID: e.PlayerID, Type: e.Type, Amount: e.Amount,
				RefType: e.RefType, RefID: e.RefID, CreatedAt: e.CreatedAt,
			})
		}
		WriteJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}
