package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

func recordLedgerEntry(ctx context.Context, tx pgx.Tx, playerID, entryType string, amount int64, refType, refID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO mining_ledger (id, player_id, type, amount, ref_type, ref_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, NewID(), playerID, entryType, amount, refType, refID)
	return err
}

type LedgerFilter struct {
	PlayerID  string
	SessionID string
	From      *time.Time
	To        *time.Time
}

func (s *Store) ListLedgerEntries(ctx context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	where := "WHERE 1=1"
	args := []any{}
	if f.PlayerID != "" {
		args = append(args, f.PlayerID)
		where += fmt.Sprintf(" AND player_id = $%d", len(args))
	}
	if f.SessionID != "" {
		args = append(args, f.SessionID)
		where += fmt.Sprintf(" AND ref_type = 'session' AND ref_id = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	args = append(args, limit, offset)
	q := `SELECT id, player_id, type, amount, ref_type, ref_id, created_at FROM mining_ledger ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LedgerEntry{}
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Type, &e.Amount, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, level, coins
		FROM players
		ORDER BY coins DESC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.Name, &e.Level, &e.Coins); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
