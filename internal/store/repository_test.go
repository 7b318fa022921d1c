package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orevein/internal/reward"
	"orevein/internal/store"
	"orevein/internal/testutil"
)

func seedPlayer(t *testing.T, st *store.Store, name, apiKey string) *store.Player {
	t.Helper()
	id, err := st.CreatePlayer(context.Background(), name, apiKey)
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	p, err := st.GetPlayer(context.Background(), id)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	return p
}

func seedScene(t *testing.T, st *store.Store) *store.Scene {
	t.Helper()
	id, err := st.CreateScene(context.Background(), store.Scene{
		Name: "Test Gully", UnlockLevel: 1, EnergyCostPerCycle: 1,
		CoinsMin: 5, CoinsMax: 10, BaseExperience: 4,
		Drops: []reward.DropEntry{{Name: "ore", Rarity: reward.RarityCommon, Rate: 0.5, Value: 3}},
	})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	sc, err := st.GetScene(context.Background(), id)
	if err != nil {
		t.Fatalf("get scene: %v", err)
	}
	return sc
}

func openSession(t *testing.T, st *store.Store, p *store.Player, sc *store.Scene, at time.Time) store.MiningSession {
	t.Helper()
	sess := store.MiningSession{
		ID:               store.NewID(),
		PlayerID:         p.ID,
		SceneID:          sc.ID,
		Status:           store.SessionStatusActive,
		StartedAt:        at,
		LastReconciledAt: at,
		Items:            []reward.Item{},
		SceneSnapshot:    sc.Snapshot(),
	}
	if err := st.CreateMiningSession(context.Background(), sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func TestPlayerLookupByAPIKey(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	p := seedPlayer(t, st, "miner", "key-1")
	if p.Level != 1 || p.Energy != store.BaseMaxEnergy || p.MaxEnergy != store.BaseMaxEnergy {
		t.Fatalf("fresh player = %+v", p)
	}

	got, err := st.GetPlayerByAPIKey(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("lookup returned %s, want %s", got.ID, p.ID)
	}
	if _, err := st.GetPlayerByAPIKey(context.Background(), "wrong"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("wrong key err = %v, want ErrNotFound", err)
	}
}

func TestOneActiveSessionPerPlayer(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	p := seedPlayer(t, st, "miner", "key-1")
	sc := seedScene(t, st)
	start := time.Now().UTC().Truncate(time.Millisecond)
	sess := openSession(t, st, p, sc, start)

	dup := sess
	dup.ID = store.NewID()
	err := st.CreateMiningSession(context.Background(), dup)
	if !errors.Is(err, store.ErrDuplicateActiveSession) {
		t.Fatalf("second active session err = %v, want ErrDuplicateActiveSession", err)
	}

	ended := start.Add(time.Minute)
	if _, err := st.ApplySessionDelta(context.Background(), store.SessionDeltaParams{
		SessionID:         sess.ID,
		PlayerID:          p.ID,
		ExpectedWatermark: start,
		NewWatermark:      ended,
		EnergyWatermark:   ended,
		Close:             true,
		EndedAt:           &ended,
	}); err != nil {
		t.Fatalf("close session: %v", err)
	}

	// Closed sessions no longer block a new one.
	openSession(t, st, p, sc, ended)
}

func TestApplySessionDeltaGuardsWatermark(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	p := seedPlayer(t, st, "miner", "key-1")
	sc := seedScene(t, st)
	start := time.Now().UTC().Truncate(time.Millisecond)
	sess := openSession(t, st, p, sc, start)

	first := store.SessionDeltaParams{
		SessionID:         sess.ID,
		PlayerID:          p.ID,
		ExpectedWatermark: start,
		NewWatermark:      start.Add(30 * time.Second),
		CyclesDelta:       10,
		CoinsDelta:        120,
		ExperienceDelta:   40,
		ItemsDelta:        []reward.Item{{Name: "ore", Rarity: reward.RarityCommon, Value: 3}},
		EnergyDelta:       -10,
		EnergyWatermark:   start,
	}
	updated, err := st.ApplySessionDelta(context.Background(), first)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if updated.Coins != 120 || updated.Energy != store.BaseMaxEnergy-10 || updated.MiningCycles != 10 {
		t.Fatalf("player after apply = %+v", updated)
	}

	// Same expected watermark again: the delta was already applied.
	if _, err := st.ApplySessionDelta(context.Background(), first); !errors.Is(err, store.ErrStaleSession) {
		t.Fatalf("replayed apply err = %v, want ErrStaleSession", err)
	}

	got, err := st.GetMiningSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.CyclesCompleted != 10 || got.Coins != 120 || len(got.Items) != 1 {
		t.Fatalf("session after apply = %+v", got)
	}
}

func TestApplySessionDeltaLevelsUpAndRaisesCap(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	p := seedPlayer(t, st, "miner", "key-1")
	sc := seedScene(t, st)
	start := time.Now().UTC().Truncate(time.Millisecond)
	sess := openSession(t, st, p, sc, start)

	updated, err := st.ApplySessionDelta(context.Background(), store.SessionDeltaParams{
		SessionID:         sess.ID,
		PlayerID:          p.ID,
		ExpectedWatermark: start,
		NewWatermark:      start.Add(time.Minute),
		CyclesDelta:       20,
		CoinsDelta:        100,
		ExperienceDelta:   450,
		EnergyDelta:       -20,
		EnergyWatermark:   start,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.Level != 3 {
		t.Fatalf("level = %d, want 3 at 450 xp", updated.Level)
	}
	if updated.MaxEnergy != store.MaxEnergyForLevel(3) {
		t.Fatalf("max energy = %d, want %d", updated.MaxEnergy, store.MaxEnergyForLevel(3))
	}
}

func TestTopUpEnergyClampsAtCap(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	p := seedPlayer(t, st, "miner", "key-1")
	sc := seedScene(t, st)
	start := time.Now().UTC().Truncate(time.Millisecond)
	sess := openSession(t, st, p, sc, start)

	// Spend some energy first so the top-up has room.
	if _, err := st.ApplySessionDelta(context.Background(), store.SessionDeltaParams{
		SessionID:         sess.ID,
		PlayerID:          p.ID,
		ExpectedWatermark: start,
		NewWatermark:      start.Add(time.Minute),
		CyclesDelta:       30,
		EnergyDelta:       -30,
		EnergyWatermark:   start,
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got, err := st.TopUpEnergy(context.Background(), p.ID, 1000)
	if err != nil {
		t.Fatalf("topup: %v", err)
	}
	if got.Energy != got.MaxEnergy {
		t.Fatalf("energy after topup = %d, want cap %d", got.Energy, got.MaxEnergy)
	}

	entries, err := st.ListLedgerEntries(context.Background(), store.LedgerFilter{PlayerID: p.ID}, 10, 0)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	var found bool
	for _, e := range entries {
		if e.Type == "energy_topup" && e.Amount == 30 {
			found = true
		}
	}
	if !found {
		t.Fatalf("topup ledger entry missing, got %+v", entries)
	}
}

func TestEnsureDefaultScenesIsIdempotent(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	if err := st.EnsureDefaultScenes(context.Background()); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := st.EnsureDefaultScenes(context.Background()); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	n, err := st.CountScenes(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("scene count = %d, want 3", n)
	}
}

func TestLedgerFilterBySession(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	p := seedPlayer(t, st, "miner", "key-1")
	sc := seedScene(t, st)
	start := time.Now().UTC().Truncate(time.Millisecond)
	sess := openSession(t, st, p, sc, start)

	if _, err := st.ApplySessionDelta(context.Background(), store.SessionDeltaParams{
		SessionID:         sess.ID,
		PlayerID:          p.ID,
		ExpectedWatermark: start,
		NewWatermark:      start.Add(time.Minute),
		CyclesDelta:       5,
		CoinsDelta:        60,
		EnergyDelta:       -5,
		EnergyWatermark:   start,
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	entries, err := st.ListLedgerEntries(context.Background(), store.LedgerFilter{SessionID: sess.ID}, 10, 0)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != "mining_reward" || entries[0].Amount != 60 {
		t.Fatalf("session ledger = %+v", entries)
	}
}
