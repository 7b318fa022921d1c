package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const sessionColumns = `id, player_id, scene_id, status, started_at, ended_at, last_reconciled_at,
	cycles_completed, coins, experience, items, scene_snapshot, created_at`

const uniqueViolationCode = "23505"

func scanSession(row pgx.Row) (*MiningSession, error) {
	var m MiningSession
	var items, snapshot []byte
	err := row.Scan(&m.ID, &m.PlayerID, &m.SceneID, &m.Status, &m.StartedAt, &m.EndedAt,
		&m.LastReconciledAt, &m.CyclesCompleted, &m.Coins, &m.Experience, &items, &snapshot, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &m.Items); err != nil {
			return nil, err
		}
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &m.SceneSnapshot); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// CreateMiningSession inserts an active session. The partial unique index on
// (player_id) WHERE status='active' is the authority for the one-active-
// session invariant; a concurrent double start surfaces here as
// ErrDuplicateActiveSession.
func (s *Store) CreateMiningSession(ctx context.Context, m MiningSession) error {
	items, err := json.Marshal(m.Items)
	if err != nil {
		return err
	}
	snapshot, err := json.Marshal(m.SceneSnapshot)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO mining_sessions (id, player_id, scene_id, status, started_at, last_reconciled_at,
			cycles_completed, coins, experience, items, scene_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, m.ID, m.PlayerID, m.SceneID, m.Status, m.StartedAt, m.LastReconciledAt,
		m.CyclesCompleted, m.Coins, m.Experience, items, snapshot)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateActiveSession
		}
		return err
	}
	return nil
}

func (s *Store) GetActiveSessionByPlayer(ctx context.Context, playerID string) (*MiningSession, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM mining_sessions WHERE player_id = $1 AND status = 'active'`, playerID)
	return scanSession(row)
}

func (s *Store) GetMiningSession(ctx context.Context, id string) (*MiningSession, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM mining_sessions WHERE id = $1`, id)
	return scanSession(row)
}

func (s *Store) ListActiveSessions(ctx context.Context) ([]MiningSession, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+sessionColumns+` FROM mining_sessions WHERE status = 'active' ORDER BY started_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *Store) ListSessionsByPlayer(ctx context.Context, playerID string, limit, offset int) ([]MiningSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+sessionColumns+` FROM mining_sessions WHERE player_id = $1 ORDER BY started_at DESC LIMIT $2 OFFSET $3`,
		playerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]MiningSession, error) {
	out := []MiningSession{}
	for rows.Next() {
		var m MiningSession
		var items, snapshot []byte
		if err := rows.Scan(&m.ID, &m.PlayerID, &m.SceneID, &m.Status, &m.StartedAt, &m.EndedAt,
			&m.LastReconciledAt, &m.CyclesCompleted, &m.Coins, &m.Experience, &items, &snapshot, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(items) > 0 {
			if err := json.Unmarshal(items, &m.Items); err != nil {
				return nil, err
			}
		}
		if len(snapshot) > 0 {
			if err := json.Unmarshal(snapshot, &m.SceneSnapshot); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ApplySessionDelta applies one reconciliation atomically: advance the session
// (guarded by the watermark it was computed from), mutate the player row under
// FOR UPDATE, and append ledger entries. Either everything lands or nothing
// does, so a failed apply leaves the session replayable.
func (s *Store) ApplySessionDelta(ctx context.Context, p SessionDeltaParams) (*Player, error) {
	itemsDelta, err := json.Marshal(p.ItemsDelta)
	if err != nil {
		return nil, err
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Player row lock first: it is the per-player serialization point shared
	// with every other mutation path.
	player, err := scanPlayer(tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1 FOR UPDATE`, p.PlayerID))
	if err != nil {
		return nil, err
	}

	status := SessionStatusActive
	if p.Close {
		status = SessionStatusClosed
	}
	tag, err := tx.Exec(ctx, `
		UPDATE mining_sessions
		SET status = $1,
		    ended_at = $2,
		    last_reconciled_at = $3,
		    cycles_completed = cycles_completed + $4,
		    coins = coins + $5,
		    experience = experience + $6,
		    items = items || $7::jsonb
		WHERE id = $8 AND status = 'active' AND last_reconciled_at = $9
	`, status, p.EndedAt, p.NewWatermark, p.CyclesDelta, p.CoinsDelta, p.ExperienceDelta,
		itemsDelta, p.SessionID, p.ExpectedWatermark)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrStaleSession
	}

	newEnergy := player.Energy + p.EnergyDelta
	if newEnergy < 0 {
		newEnergy = 0
	}
	newXP := player.Experience + p.ExperienceDelta
	newLevel := LevelForExperience(newXP)
	if newLevel < player.Level {
		newLevel = player.Level
	}
	newMax := player.MaxEnergy
	if m := MaxEnergyForLevel(newLevel); m > newMax {
		newMax = m
	}
	if newEnergy > newMax {
		newEnergy = newMax
	}
	if _, err := tx.Exec(ctx, `
		UPDATE players
		SET coins = coins + $1,
		    experience = $2,
		    level = $3,
		    max_energy = $4,
		    energy = $5,
		    energy_reconciled_at = $6,
		    mining_cycles = mining_cycles + $7
		WHERE id = $8
	`, p.CoinsDelta, newXP, newLevel, newMax, newEnergy, p.EnergyWatermark, p.CyclesDelta, p.PlayerID); err != nil {
		return nil, err
	}

	if p.CoinsDelta > 0 {
		if err := recordLedgerEntry(ctx, tx, p.PlayerID, "mining_reward", p.CoinsDelta, "session", p.SessionID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	player.Coins += p.CoinsDelta
	player.Experience = newXP
	player.Level = newLevel
	player.MaxEnergy = newMax
	player.Energy = newEnergy
	player.EnergyReconciledAt = p.EnergyWatermark
	player.MiningCycles += p.CyclesDelta
	return player, nil
}
