package mining

import (
	"context"
	"errors"
	"sync"
	"time"

	"orevein/internal/energy"
	"orevein/internal/events"
	"orevein/internal/reward"
	"orevein/internal/store"

	"github.com/rs/zerolog"
)

// Backend is the storage surface the coordinator needs. *store.Store
// satisfies it; tests swap in fakes.
type Backend interface {
	GetPlayer(ctx context.Context, id string) (*store.Player, error)
	GetScene(ctx context.Context, id string) (*store.Scene, error)
	CreateMiningSession(ctx context.Context, m store.MiningSession) error
	GetActiveSessionByPlayer(ctx context.Context, playerID string) (*store.MiningSession, error)
	ListActiveSessions(ctx context.Context) ([]store.MiningSession, error)
	ApplySessionDelta(ctx context.Context, p store.SessionDeltaParams) (*store.Player, error)
}

// Coordinator owns the session lifecycle. A per-player mutex serializes
// lifecycle calls within this process; the storage layer's unique index and
// watermark guard hold the same invariants against other writers.
type Coordinator struct {
	cfg Config
	db  Backend
	pub events.Publisher
	log zerolog.Logger
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(cfg Config, db Backend, pub events.Publisher, log zerolog.Logger) *Coordinator {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Coordinator{
		cfg:   cfg,
		db:    db,
		pub:   pub,
		log:   log,
		now:   time.Now,
		locks: map[string]*sync.Mutex{},
	}
}

func (c *Coordinator) playerLock(playerID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lk := c.locks[playerID]
	if lk == nil {
		lk = &sync.Mutex{}
		c.locks[playerID] = lk
	}
	return lk
}

// Start opens an accrual session for the player in the given scene. The
// player must have unlocked auto-mining and the scene, and must afford at
// least one cycle after pending regeneration.
func (c *Coordinator) Start(ctx context.Context, playerID, sceneID string) (*StartResult, error) {
	lk := c.playerLock(playerID)
	lk.Lock()
	defer lk.Unlock()

	player, err := c.db.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.Level < c.cfg.AutoMineUnlockLevel {
		return nil, ErrLevelTooLow
	}
	scene, err := c.db.GetScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if scene.Status != "active" || player.Level < scene.UnlockLevel {
		return nil, ErrSceneLocked
	}

	now := c.now()
	available := energy.CurrentAt(c.cfg.Energy, playerEnergy(player), now)
	if available < scene.EnergyCostPerCycle {
		return nil, &ShortfallError{Required: scene.EnergyCostPerCycle, Actual: available}
	}

	sess := store.MiningSession{
		ID:               store.NewID(),
		PlayerID:         playerID,
		SceneID:          scene.ID,
		Status:           store.SessionStatusActive,
		StartedAt:        now,
		LastReconciledAt: now,
		Items:            []reward.Item{},
		SceneSnapshot:    scene.Snapshot(),
	}
	if err := c.db.CreateMiningSession(ctx, sess); err != nil {
		if errors.Is(err, store.ErrDuplicateActiveSession) {
			return nil, ErrAlreadyActive
		}
		return nil, err
	}

	c.log.Info().Str("player_id", playerID).Str("session_id", sess.ID).
		Str("scene_id", scene.ID).Msg("mining session started")
	c.pub.Notify(playerID, "mining_started", map[string]any{
		"session_id": sess.ID,
		"scene_id":   scene.ID,
	})

	return &StartResult{
		SessionID:          sess.ID,
		SceneID:            scene.ID,
		SceneName:          scene.Name,
		StartedAt:          now,
		EnergyCostPerCycle: scene.EnergyCostPerCycle,
		CycleIntervalMs:    c.cfg.CycleInterval.Milliseconds(),
		Energy:             available,
		MaxEnergy:          player.MaxEnergy,
	}, nil
}

// Peek previews the player's active session without committing anything.
// Repeated peeks at the same watermark return the identical estimate.
func (c *Coordinator) Peek(ctx context.Context, playerID string) (*Estimate, error) {
	sess, err := c.db.GetActiveSessionByPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	player, err := c.db.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	d := ReplayElapsed(c.cfg, sess, playerEnergy(player), player.Level, c.now())
	return &Estimate{
		SessionID:        sess.ID,
		SceneID:          sess.SceneID,
		SettledThrough:   d.NewWatermark,
		PossibleCycles:   d.Possible,
		AffordableCycles: d.Affordable,
		PendingCycles:    d.Cycles,
		PendingCoins:     d.Coins,
		PendingXP:        d.Experience,
		PendingItems:     d.Items,
		TotalCycles:      sess.CyclesCompleted + d.Cycles,
		TotalCoins:       sess.Coins + d.Coins,
		TotalXP:          sess.Experience + d.Experience,
		EnergyRemaining:  d.Energy.Current,
		AccrualCapped:    d.Capped,
	}, nil
}

// Stop settles and closes the player's active session: one final replay,
// committed atomically with the close. A second Stop for the same session
// reports ErrNoActiveSession rather than paying twice.
func (c *Coordinator) Stop(ctx context.Context, playerID string) (*RewardSummary, error) {
	lk := c.playerLock(playerID)
	lk.Lock()
	defer lk.Unlock()

	sess, err := c.db.GetActiveSessionByPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	player, err := c.db.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	d := ReplayElapsed(c.cfg, sess, playerEnergy(player), player.Level, now)
	updated, err := c.db.ApplySessionDelta(ctx, store.SessionDeltaParams{
		SessionID:         sess.ID,
		PlayerID:          playerID,
		ExpectedWatermark: sess.LastReconciledAt,
		NewWatermark:      d.NewWatermark,
		CyclesDelta:       d.Cycles,
		CoinsDelta:        d.Coins,
		ExperienceDelta:   d.Experience,
		ItemsDelta:        d.Items,
		EnergyDelta:       d.EnergyGained - d.EnergySpent,
		EnergyWatermark:   d.Energy.LastReconciledAt,
		Close:             true,
		EndedAt:           &now,
	})
	if err != nil {
		if errors.Is(err, store.ErrStaleSession) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}

	totalCycles := sess.CyclesCompleted + d.Cycles
	totalCoins := sess.Coins + d.Coins
	totalXP := sess.Experience + d.Experience
	items := append(append([]reward.Item{}, sess.Items...), d.Items...)

	cost := sess.SceneSnapshot.EnergyCostPerCycle
	if cost < 1 {
		cost = 1
	}
	durationMs := now.Sub(sess.StartedAt).Milliseconds()
	coinsPerHour := 0.0
	if durationMs > 0 {
		coinsPerHour = float64(totalCoins) / (float64(durationMs) / 3_600_000)
	}

	summary := &RewardSummary{
		SessionID:       sess.ID,
		SceneID:         sess.SceneID,
		StartedAt:       sess.StartedAt,
		EndedAt:         now,
		DurationMs:      durationMs,
		Cycles:          totalCycles,
		Coins:           totalCoins,
		Experience:      totalXP,
		Items:           items,
		EnergySpent:     totalCycles * cost,
		CoinsPerHour:    coinsPerHour,
		LevelUp:         updated.Level > player.Level,
		Level:           updated.Level,
		PlayerCoins:     updated.Coins,
		EnergyRemaining: updated.Energy,
	}

	c.log.Info().Str("player_id", playerID).Str("session_id", sess.ID).
		Int64("cycles", totalCycles).Int64("coins", totalCoins).
		Msg("mining session settled")
	c.pub.Notify(playerID, "mining_stopped", summary)
	if summary.LevelUp {
		c.pub.Notify(playerID, "level_up", map[string]any{
			"level":      updated.Level,
			"max_energy": updated.MaxEnergy,
		})
	}
	return summary, nil
}

// StartSweeper runs the background reconciler until ctx is cancelled. Each
// tick banks pending progress for every active session, so a crash loses at
// most one sweep interval of unrolled cycles.
func (c *Coordinator) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.SweepOnce(ctx)
			}
		}
	}()
}

func (c *Coordinator) SweepOnce(ctx context.Context) {
	sessions, err := c.db.ListActiveSessions(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("sweep: list active sessions")
		return
	}
	for _, s := range sessions {
		if err := c.sweepPlayer(ctx, s.PlayerID); err != nil {
			c.log.Warn().Err(err).Str("player_id", s.PlayerID).Msg("sweep: reconcile failed")
		}
	}
}

func (c *Coordinator) sweepPlayer(ctx context.Context, playerID string) error {
	lk := c.playerLock(playerID)
	lk.Lock()
	defer lk.Unlock()

	// Refetch under the lock; the listing may be stale by now.
	sess, err := c.db.GetActiveSessionByPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	player, err := c.db.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	d := ReplayElapsed(c.cfg, sess, playerEnergy(player), player.Level, c.now())
	if d.Empty() {
		return nil
	}
	updated, err := c.db.ApplySessionDelta(ctx, store.SessionDeltaParams{
		SessionID:         sess.ID,
		PlayerID:          playerID,
		ExpectedWatermark: sess.LastReconciledAt,
		NewWatermark:      d.NewWatermark,
		CyclesDelta:       d.Cycles,
		CoinsDelta:        d.Coins,
		ExperienceDelta:   d.Experience,
		ItemsDelta:        d.Items,
		EnergyDelta:       d.EnergyGained - d.EnergySpent,
		EnergyWatermark:   d.Energy.LastReconciledAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrStaleSession) {
			// Another writer advanced the session first; its delta stands.
			return nil
		}
		return err
	}
	if d.Cycles > 0 {
		c.pub.Notify(playerID, "mining_progress", map[string]any{
			"session_id": sess.ID,
			"cycles":     d.Cycles,
			"coins":      d.Coins,
		})
	}
	if updated.Level > player.Level {
		c.pub.Notify(playerID, "level_up", map[string]any{
			"level":      updated.Level,
			"max_energy": updated.MaxEnergy,
		})
	}
	return nil
}
