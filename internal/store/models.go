package store

import (
	"time"

	"orevein/internal/reward"
)

const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

type Player struct {
	ID                 string
	Name               string
	APIKeyHash         string
	Level              int
	Experience         int64
	Coins              int64
	Energy             int64
	MaxEnergy          int64
	EnergyReconciledAt time.Time
	MiningCycles       int64
	CreatedAt          time.Time
}

type Scene struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	UnlockLevel        int                `json:"unlock_level"`
	EnergyCostPerCycle int64              `json:"energy_cost_per_cycle"`
	CoinsMin           int64              `json:"coins_min"`
	CoinsMax           int64              `json:"coins_max"`
	BaseExperience     int64              `json:"base_experience"`
	Drops              []reward.DropEntry `json:"drops"`
	Status             string             `json:"status"`
	CreatedAt          time.Time          `json:"created_at"`
}

// MiningSession carries a value snapshot of the scene taken at start; the
// catalog row may change afterwards without affecting a running session.
type MiningSession struct {
	ID               string
	PlayerID         string
	SceneID          string
	Status           string
	StartedAt        time.Time
	EndedAt          *time.Time
	LastReconciledAt time.Time
	CyclesCompleted  int64
	Coins            int64
	Experience       int64
	Items            []reward.Item
	SceneSnapshot    reward.Scene
	CreatedAt        time.Time
}

type LedgerEntry struct {
	ID        string
	PlayerID  string
	Type      string
	Amount    int64
	RefType   string
	RefID     string
	CreatedAt time.Time
}

type LeaderboardEntry struct {
	PlayerID string
	Name     string
	Level    int
	Coins    int64
}

// SessionDeltaParams is one reconciliation's worth of state change, applied
// atomically to the session row, the player row, and the ledger.
type SessionDeltaParams struct {
	SessionID string
	PlayerID  string

	// Optimistic guard: the watermark the delta was computed from.
	ExpectedWatermark time.Time
	NewWatermark      time.Time

	CyclesDelta     int64
	CoinsDelta      int64
	ExperienceDelta int64
	ItemsDelta      []reward.Item

	// Signed: regeneration gained minus energy spent since the last apply.
	EnergyDelta     int64
	EnergyWatermark time.Time

	Close   bool
	EndedAt *time.Time
}
