package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const playerColumns = `id, name, api_key_hash, level, experience, coins, energy, max_energy, energy_reconciled_at, mining_cycles, created_at`

func scanPlayer(row pgx.Row) (*Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.Level, &p.Experience, &p.Coins,
		&p.Energy, &p.MaxEnergy, &p.EnergyReconciledAt, &p.MiningCycles, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*Player, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (s *Store) GetPlayerByAPIKey(ctx context.Context, apiKey string) (*Player, error) {
	hash := HashAPIKey(apiKey)
	row := s.Pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE api_key_hash = $1`, hash)
	return scanPlayer(row)
}

func (s *Store) CreatePlayer(ctx context.Context, name, apiKey string) (string, error) {
	id := NewID()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO players (id, name, api_key_hash, level, experience, coins, energy, max_energy, energy_reconciled_at)
		VALUES ($1, $2, $3, 1, 0, 0, $4, $4, now())
	`, id, name, HashAPIKey(apiKey), BaseMaxEnergy)
	return id, err
}

func (s *Store) ListPlayers(ctx context.Context, limit, offset int) ([]Player, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Player{}
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.Level, &p.Experience, &p.Coins,
			&p.Energy, &p.MaxEnergy, &p.EnergyReconciledAt, &p.MiningCycles, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TopUpEnergy credits energy from the shop/admin path. The amount is clamped
// to max_energy in the mutator, mirroring the engine's cap invariant.
func (s *Store) TopUpEnergy(ctx context.Context, playerID string, amount int64) (*Player, error) {
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := scanPlayer(tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1 FOR UPDATE`, playerID))
	if err != nil {
		return nil, err
	}
	newEnergy := p.Energy + amount
	if newEnergy > p.MaxEnergy {
		newEnergy = p.MaxEnergy
	}
	if _, err := tx.Exec(ctx, `UPDATE players SET energy = $1 WHERE id = $2`, newEnergy, playerID); err != nil {
		return nil, err
	}
	if err := recordLedgerEntry(ctx, tx, playerID, "energy_topup", newEnergy-p.Energy, "topup", NewID()); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p.Energy = newEnergy
	return p, nil
}
