package public

import (
	"time"

	"orevein/internal/reward"
)

type ScenesResponse struct {
	Items []SceneItem `json:"items"`
}

type SceneItem struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	UnlockLevel        int                `json:"unlock_level"`
	EnergyCostPerCycle int64              `json:"energy_cost_per_cycle"`
	CoinsMin           int64              `json:"coins_min"`
	CoinsMax           int64              `json:"coins_max"`
	BaseExperience     int64              `json:"base_experience"`
	Drops              []reward.DropEntry `json:"drops"`
}

type LeaderboardResponse struct {
	Items  []LeaderboardItem `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type LeaderboardItem struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Coins    int64  `json:"coins"`
}

type ProfileResponse struct {
	PlayerID     string    `json:"player_id"`
	Name         string    `json:"name"`
	Level        int       `json:"level"`
	Experience   int64     `json:"experience"`
	NextLevelXP  int64     `json:"next_level_experience"`
	Coins        int64     `json:"coins"`
	Energy       int64     `json:"energy"`
	MaxEnergy    int64     `json:"max_energy"`
	MiningCycles int64     `json:"mining_cycles"`
	CreatedAt    time.Time `json:"created_at"`
}

type SessionsResponse struct {
	Items  []SessionItem `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type SessionItem struct {
	SessionID  string        `json:"session_id"`
	SceneID    string        `json:"scene_id"`
	SceneName  string        `json:"scene_name"`
	Status     string        `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	EndedAt    *time.Time    `json:"ended_at"`
	Cycles     int64         `json:"cycles"`
	Coins      int64         `json:"coins"`
	Experience int64         `json:"experience"`
	Items      []reward.Item `json:"items"`
}
