package mining

import (
	"encoding/binary"
	"hash/fnv"
	"time"

	"orevein/internal/energy"
	"orevein/internal/reward"
	"orevein/internal/store"
)

// Delta is the outcome of replaying a session's elapsed time against its
// scene snapshot. It is a pure value: applying it to storage is the caller's
// job, so the same delta can be previewed, discarded, or committed.
type Delta struct {
	Possible   int64
	Affordable int64
	Cycles     int64

	Coins      int64
	Experience int64
	Items      []reward.Item

	EnergyGained int64
	EnergySpent  int64
	Energy       energy.State

	NewWatermark time.Time
	Capped       bool
}

// Empty reports whether applying the delta would change any persisted state.
func (d Delta) Empty() bool {
	return d.Cycles == 0 && d.EnergyGained == 0
}

// replaySeed derives the reward stream for one reconciliation window. Both
// the seed inputs change only when a delta is committed, so previewing the
// window any number of times rolls the exact same outcomes as committing it.
func replaySeed(sessionID string, watermark time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(watermark.UnixMilli()))
	h.Write(b[:])
	return int64(h.Sum64())
}

// ReplayElapsed computes everything a session earned between its watermark
// and asOf: regeneration first, then as many whole cycles as both elapsed
// time and reconciled energy afford. The watermark advances only by completed
// cycles, so a partial cycle's remainder is never lost. Elapsed time beyond
// MaxAccrual is discarded.
func ReplayElapsed(cfg Config, sess *store.MiningSession, es energy.State, level int, asOf time.Time) Delta {
	horizon := sess.LastReconciledAt.Add(cfg.MaxAccrual)
	capped := false
	if asOf.After(horizon) {
		asOf = horizon
		capped = true
	}

	d := Delta{Energy: es, NewWatermark: sess.LastReconciledAt, Capped: capped}
	elapsed := asOf.Sub(sess.LastReconciledAt)
	if elapsed <= 0 {
		return d
	}

	before := es.Current
	es = energy.Reconcile(cfg.Energy, es, asOf)
	d.EnergyGained = es.Current - before
	d.Energy = es

	cost := sess.SceneSnapshot.EnergyCostPerCycle
	if cost < 1 {
		cost = 1
	}
	d.Possible = int64(elapsed / cfg.CycleInterval)
	d.Affordable = es.Current / cost
	d.Cycles = min(d.Possible, d.Affordable)
	if d.Cycles <= 0 {
		return d
	}

	es, err := energy.Consume(es, d.Cycles*cost)
	if err != nil {
		// Unreachable: affordable is computed from the same state.
		return d
	}
	d.EnergySpent = d.Cycles * cost
	d.Energy = es
	d.NewWatermark = sess.LastReconciledAt.Add(time.Duration(d.Cycles) * cfg.CycleInterval)

	roller := reward.NewSeededRoller(replaySeed(sess.ID, sess.LastReconciledAt))
	for i := int64(0); i < d.Cycles; i++ {
		out := roller.RollCycle(sess.SceneSnapshot, level)
		d.Coins += out.Coins
		d.Experience += out.Experience
		d.Items = append(d.Items, out.Items...)
	}
	return d
}

// playerEnergy lifts a player row into the engine's energy state.
func playerEnergy(p *store.Player) energy.State {
	return energy.State{Current: p.Energy, Max: p.MaxEnergy, LastReconciledAt: p.EnergyReconciledAt}
}
