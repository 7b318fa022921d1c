package store

import (
	"context"
	"encoding/json"
	"errors"

	"orevein/internal/reward"

	"github.com/jackc/pgx/v5"
)

const sceneColumns = `id, name, unlock_level, energy_cost_per_cycle, coins_min, coins_max, base_experience, drops, status, created_at`

func scanScene(row pgx.Row) (*Scene, error) {
	var sc Scene
	var drops []byte
	err := row.Scan(&sc.ID, &sc.Name, &sc.UnlockLevel, &sc.EnergyCostPerCycle,
		&sc.CoinsMin, &sc.CoinsMax, &sc.BaseExperience, &drops, &sc.Status, &sc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(drops) > 0 {
		if err := json.Unmarshal(drops, &sc.Drops); err != nil {
			return nil, err
		}
	}
	return &sc, nil
}

func (s *Store) GetScene(ctx context.Context, id string) (*Scene, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE id = $1`, id)
	return scanScene(row)
}

func (s *Store) ListScenes(ctx context.Context) ([]Scene, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE status = 'active' ORDER BY unlock_level ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Scene{}
	for rows.Next() {
		var sc Scene
		var drops []byte
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.UnlockLevel, &sc.EnergyCostPerCycle,
			&sc.CoinsMin, &sc.CoinsMax, &sc.BaseExperience, &drops, &sc.Status, &sc.CreatedAt); err != nil {
			return nil, err
		}
		if len(drops) > 0 {
			if err := json.Unmarshal(drops, &sc.Drops); err != nil {
				return nil, err
			}
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) CreateScene(ctx context.Context, sc Scene) (string, error) {
	if sc.ID == "" {
		sc.ID = NewID()
	}
	drops, err := json.Marshal(sc.Drops)
	if err != nil {
		return "", err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO scenes (id, name, unlock_level, energy_cost_per_cycle, coins_min, coins_max, base_experience, drops, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'active')
	`, sc.ID, sc.Name, sc.UnlockLevel, sc.EnergyCostPerCycle, sc.CoinsMin, sc.CoinsMax, sc.BaseExperience, drops)
	return sc.ID, err
}

func (s *Store) CountScenes(ctx context.Context) (int, error) {
	var c int
	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(1) FROM scenes`).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

func (s *Store) EnsureDefaultScenes(ctx context.Context) error {
	c, err := s.CountScenes(ctx)
	if err != nil {
		return err
	}
	if c > 0 {
		return nil
	}
	defaults := []Scene{
		{
			Name: "Copper Gully", UnlockLevel: 1, EnergyCostPerCycle: 1,
			CoinsMin: 5, CoinsMax: 12, BaseExperience: 4,
			Drops: []reward.DropEntry{
				{Name: "copper ore", Rarity: reward.RarityCommon, Rate: 0.35, Value: 3},
				{Name: "rough quartz", Rarity: reward.RarityUncommon, Rate: 0.08, Value: 10},
			},
		},
		{
			Name: "Iron Hollow", UnlockLevel: 5, EnergyCostPerCycle: 2,
			CoinsMin: 14, CoinsMax: 30, BaseExperience: 9,
			Drops: []reward.DropEntry{
				{Name: "iron ore", Rarity: reward.RarityCommon, Rate: 0.35, Value: 8},
				{Name: "silver nugget", Rarity: reward.RarityRare, Rate: 0.04, Value: 40},
			},
		},
		{
			Name: "Deep Seam", UnlockLevel: 12, EnergyCostPerCycle: 4,
			CoinsMin: 40, CoinsMax: 85, BaseExperience: 22,
			Drops: []reward.DropEntry{
				{Name: "gold chunk", Rarity: reward.RarityEpic, Rate: 0.015, Value: 200},
				{Name: "star diamond", Rarity: reward.RarityLegendary, Rate: 0.002, Value: 1500},
				{Name: "dense ore", Rarity: reward.RarityCommon, Rate: 0.4, Value: 18},
			},
		},
	}
	for _, sc := range defaults {
		if _, err := s.CreateScene(ctx, sc); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot converts a catalog row into the immutable value the engine keeps
// for the lifetime of a session.
func (sc *Scene) Snapshot() reward.Scene {
	drops := make([]reward.DropEntry, len(sc.Drops))
	copy(drops, sc.Drops)
	return reward.Scene{
		ID:                 sc.ID,
		Name:               sc.Name,
		UnlockLevel:        sc.UnlockLevel,
		EnergyCostPerCycle: sc.EnergyCostPerCycle,
		CoinsMin:           sc.CoinsMin,
		CoinsMax:           sc.CoinsMax,
		BaseExperience:     sc.BaseExperience,
		Drops:              drops,
	}
}
