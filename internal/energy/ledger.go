package energy

import (
	"errors"
	"time"
)

var ErrInsufficient = errors.New("insufficient_energy")

// Config is the global regeneration tuning. Energy recovers RecoveryAmount
// units every RecoveryInterval of wall-clock time, up to the player's cap.
type Config struct {
	RecoveryInterval time.Duration
	RecoveryAmount   int64
}

// State is the persisted energy snapshot for one player. Fractional progress
// toward the next recovery tick lives in LastReconciledAt, never as a float:
// Reconcile advances the watermark only by whole consumed intervals.
type State struct {
	Current          int64
	Max              int64
	LastReconciledAt time.Time
}

// CurrentAt returns the energy the player has at asOf without mutating state.
func CurrentAt(cfg Config, s State, asOf time.Time) int64 {
	if s.Current >= s.Max {
		return s.Current
	}
	elapsed := asOf.Sub(s.LastReconciledAt)
	if elapsed < cfg.RecoveryInterval {
		return s.Current
	}
	gained := int64(elapsed/cfg.RecoveryInterval) * cfg.RecoveryAmount
	if s.Current+gained > s.Max {
		return s.Max
	}
	return s.Current + gained
}

// Reconcile materializes regeneration earned up to asOf. Below the cap the
// watermark advances by whole intervals only, so the remainder of a partially
// elapsed interval carries into the next call. At the cap the watermark jumps
// to asOf: time spent full earns nothing and must not be banked.
func Reconcile(cfg Config, s State, asOf time.Time) State {
	elapsed := asOf.Sub(s.LastReconciledAt)
	if elapsed <= 0 {
		return s
	}
	if s.Current >= s.Max {
		s.LastReconciledAt = asOf
		return s
	}
	intervals := int64(elapsed / cfg.RecoveryInterval)
	if intervals <= 0 {
		return s
	}
	gained := intervals * cfg.RecoveryAmount
	if s.Current+gained >= s.Max {
		s.Current = s.Max
		s.LastReconciledAt = asOf
		return s
	}
	s.Current += gained
	s.LastReconciledAt = s.LastReconciledAt.Add(time.Duration(intervals) * cfg.RecoveryInterval)
	return s
}

// Consume spends amount energy. It never touches the watermark; callers
// reconcile first if they want regeneration counted.
func Consume(s State, amount int64) (State, error) {
	if amount < 0 {
		return s, errors.New("negative_amount")
	}
	if amount > s.Current {
		return s, ErrInsufficient
	}
	s.Current -= amount
	return s, nil
}

// RaiseMax grows the cap on level-up. Current energy is never reduced.
func RaiseMax(s State, delta int64) State {
	if delta <= 0 {
		return s
	}
	s.Max += delta
	return s
}
