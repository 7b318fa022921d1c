package mining

import (
	"time"

	"orevein/internal/reward"
)

type StartResult struct {
	SessionID          string    `json:"session_id"`
	SceneID            string    `json:"scene_id"`
	SceneName          string    `json:"scene_name"`
	StartedAt          time.Time `json:"started_at"`
	EnergyCostPerCycle int64     `json:"energy_cost_per_cycle"`
	CycleIntervalMs    int64     `json:"cycle_interval_ms"`
	Energy             int64     `json:"energy"`
	MaxEnergy          int64     `json:"max_energy"`
}

// Estimate is a non-binding preview of what stopping right now would pay.
// Totals include cycles already banked by earlier reconciliations.
type Estimate struct {
	SessionID        string        `json:"session_id"`
	SceneID          string        `json:"scene_id"`
	SettledThrough   time.Time     `json:"settled_through"`
	PossibleCycles   int64         `json:"possible_cycles"`
	AffordableCycles int64         `json:"affordable_cycles"`
	PendingCycles    int64         `json:"pending_cycles"`
	PendingCoins     int64         `json:"pending_coins"`
	PendingXP        int64         `json:"pending_experience"`
	PendingItems     []reward.Item `json:"pending_items"`
	TotalCycles      int64         `json:"total_cycles"`
	TotalCoins       int64         `json:"total_coins"`
	TotalXP          int64         `json:"total_experience"`
	EnergyRemaining  int64         `json:"energy_remaining"`
	AccrualCapped    bool          `json:"accrual_capped"`
}

// RewardSummary is the settled result of a closed session.
type RewardSummary struct {
	SessionID       string        `json:"session_id"`
	SceneID         string        `json:"scene_id"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         time.Time     `json:"ended_at"`
	DurationMs      int64         `json:"duration_ms"`
	Cycles          int64         `json:"cycles"`
	Coins           int64         `json:"coins"`
	Experience      int64         `json:"experience"`
	Items           []reward.Item `json:"items"`
	EnergySpent     int64         `json:"energy_spent"`
	CoinsPerHour    float64       `json:"coins_per_hour"`
	LevelUp         bool          `json:"level_up"`
	Level           int           `json:"level"`
	PlayerCoins     int64         `json:"player_coins"`
	EnergyRemaining int64         `json:"energy_remaining"`
}
