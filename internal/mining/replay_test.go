package mining

import (
	"reflect"
	"testing"
	"time"

	"orevein/internal/energy"
	"orevein/internal/reward"
	"orevein/internal/store"
)

func testConfig() Config {
	return Config{
		Energy:              energy.Config{RecoveryInterval: 60 * time.Second, RecoveryAmount: 1},
		CycleInterval:       3 * time.Second,
		MaxAccrual:          12 * time.Hour,
		AutoMineUnlockLevel: 5,
	}
}

func testSession(start time.Time, costPerCycle int64) *store.MiningSession {
	return &store.MiningSession{
		ID:               "sess-1",
		PlayerID:         "p1",
		SceneID:          "scene-1",
		Status:           store.SessionStatusActive,
		StartedAt:        start,
		LastReconciledAt: start,
		SceneSnapshot: reward.Scene{
			ID: "scene-1", Name: "Copper Gully", UnlockLevel: 5,
			EnergyCostPerCycle: costPerCycle, CoinsMin: 10, CoinsMax: 10, BaseExperience: 4,
		},
	}
}

func TestReplayEnergyBoundsCycles(t *testing.T) {
	cfg := testConfig()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := testSession(start, 1)
	es := energy.State{Current: 100, Max: 100, LastReconciledAt: start}

	// 310s elapsed allows 103 cycles by time, but only 100 by energy.
	d := ReplayElapsed(cfg, sess, es, 10, start.Add(310*time.Second))
	if d.Possible != 103 {
		t.Fatalf("possible = %d, want 103", d.Possible)
	}
	if d.Affordable != 100 {
		t.Fatalf("affordable = %d, want 100", d.Affordable)
	}
	if d.Cycles != 100 {
		t.Fatalf("cycles = %d, want 100", d.Cycles)
	}
	if d.Energy.Current != 0 {
		t.Fatalf("energy after = %d, want 0", d.Energy.Current)
	}
	if want := start.Add(300 * time.Second); !d.NewWatermark.Equal(want) {
		t.Fatalf("watermark = %v, want %v", d.NewWatermark, want)
	}
	// coins_min == coins_max, so rewards are exact: 10 * 1.25 per cycle at
	// level 10 in a level-5 scene.
	if d.Coins != 100*12 {
		t.Fatalf("coins = %d, want %d", d.Coins, 100*12)
	}
}

func TestReplayPartialCycleCarriesOver(t *testing.T) {
	cfg := testConfig()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := testSession(start, 1)
	es := energy.State{Current: 50, Max: 100, LastReconciledAt: start}

	d1 := ReplayElapsed(cfg, sess, es, 10, start.Add(4500*time.Millisecond))
	if d1.Cycles != 1 {
		t.Fatalf("first window cycles = %d, want 1", d1.Cycles)
	}
	if want := start.Add(3 * time.Second); !d1.NewWatermark.Equal(want) {
		t.Fatalf("watermark advanced past completed cycles: %v", d1.NewWatermark)
	}

	// Commit the first window, then replay the rest. The 1.5s remainder must
	// count toward the next cycle.
	sess.LastReconciledAt = d1.NewWatermark
	d2 := ReplayElapsed(cfg, sess, d1.Energy, 10, start.Add(9*time.Second))
	if d2.Cycles != 2 {
		t.Fatalf("second window cycles = %d, want 2", d2.Cycles)
	}
	if got := d1.Cycles + d2.Cycles; got != 3 {
		t.Fatalf("split replay total = %d, want 3 as in a single replay", got)
	}
}

func TestReplayIsDeterministicPerWatermark(t *testing.T) {
	cfg := testConfig()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := testSession(start, 1)
	sess.SceneSnapshot.CoinsMin = 5
	sess.SceneSnapshot.CoinsMax = 20
	sess.SceneSnapshot.Drops = []reward.DropEntry{
		{Name: "copper ore", Rarity: reward.RarityCommon, Rate: 0.5, Value: 3},
	}
	es := energy.State{Current: 80, Max: 100, LastReconciledAt: start}
	asOf := start.Add(2 * time.Minute)

	d1 := ReplayElapsed(cfg, sess, es, 10, asOf)
	d2 := ReplayElapsed(cfg, sess, es, 10, asOf)
	if d1.Coins != d2.Coins || d1.Experience != d2.Experience {
		t.Fatalf("replays diverged: %+v vs %+v", d1, d2)
	}
	if !reflect.DeepEqual(d1.Items, d2.Items) {
		t.Fatalf("item rolls diverged: %v vs %v", d1.Items, d2.Items)
	}
}

func TestReplayAppliedTwiceIsNoOp(t *testing.T) {
	cfg := testConfig()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := testSession(start, 1)
	es := energy.State{Current: 10, Max: 100, LastReconciledAt: start}
	asOf := start.Add(30 * time.Second)

	d1 := ReplayElapsed(cfg, sess, es, 10, asOf)
	if d1.Cycles != 10 {
		t.Fatalf("cycles = %d, want 10", d1.Cycles)
	}

	sess.LastReconciledAt = d1.NewWatermark
	d2 := ReplayElapsed(cfg, sess, d1.Energy, 10, asOf)
	if d2.Cycles != 0 || d2.Coins != 0 {
		t.Fatalf("re-replay after commit earned again: %+v", d2)
	}
}

func TestReplayRegenFundsCycles(t *testing.T) {
	cfg := testConfig()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := testSession(start, 1)
	es := energy.State{Current: 0, Max: 100, LastReconciledAt: start}

	// 5 minutes regenerates 5 energy; time allows 100 cycles but energy 5.
	d := ReplayElapsed(cfg, sess, es, 10, start.Add(5*time.Minute))
	if d.EnergyGained != 5 {
		t.Fatalf("regen = %d, want 5", d.EnergyGained)
	}
	if d.Cycles != 5 {
		t.Fatalf("cycles = %d, want 5", d.Cycles)
	}
	if d.Energy.Current != 0 {
		t.Fatalf("energy after = %d, want 0", d.Energy.Current)
	}
}

func TestReplayClampsToMaxAccrual(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAccrual = time.Hour
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := testSession(start, 1)
	es := energy.State{Current: 100_000, Max: 100_000, LastReconciledAt: start}

	d := ReplayElapsed(cfg, sess, es, 10, start.Add(48*time.Hour))
	if !d.Capped {
		t.Fatal("expected accrual to be capped")
	}
	if want := int64(time.Hour / cfg.CycleInterval); d.Possible != want {
		t.Fatalf("possible = %d, want %d", d.Possible, want)
	}
	if want := start.Add(time.Hour); !d.NewWatermark.Equal(want) {
		t.Fatalf("watermark = %v, want %v", d.NewWatermark, want)
	}
}

func TestReplayNothingElapsed(t *testing.T) {
	cfg := testConfig()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sess := testSession(start, 1)
	es := energy.State{Current: 50, Max: 100, LastReconciledAt: start}

	d := ReplayElapsed(cfg, sess, es, 10, start)
	if !d.Empty() {
		t.Fatalf("expected empty delta, got %+v", d)
	}
	if !d.NewWatermark.Equal(start) {
		t.Fatalf("watermark moved with no elapsed time: %v", d.NewWatermark)
	}
}
