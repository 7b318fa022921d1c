package public

import (
	"context"
	"errors"
	"time"

	"orevein/internal/energy"
	"orevein/internal/store"
)

// Service is the read-only surface behind the public endpoints: the scene
// catalog, leaderboard, player profiles and session history.
type Service struct {
	store *store.Store
	ecfg  energy.Config
}

func NewService(st *store.Store, ecfg energy.Config) *Service {
	return &Service{store: st, ecfg: ecfg}
}

func (s *Service) Scenes(ctx context.Context) (*ScenesResponse, error) {
	items, err := s.store.ListScenes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SceneItem, 0, len(items))
	for _, it := range items {
		out = append(out, SceneItem{
			ID:                 it.ID,
			Name:               it.Name,
			UnlockLevel:        it.UnlockLevel,
			EnergyCostPerCycle: it.EnergyCostPerCycle,
			CoinsMin:           it.CoinsMin,
			CoinsMax:           it.CoinsMax,
			BaseExperience:     it.BaseExperience,
			Drops:              it.Drops,
		})
	}
	return &ScenesResponse{Items: out}, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit, offset int) (*LeaderboardResponse, error) {
	items, err := s.store.ListLeaderboard(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardItem, 0, len(items))
	for idx, it := range items {
		out = append(out, LeaderboardItem{
			Rank:     offset + idx + 1,
			PlayerID: it.PlayerID,
			Name:     it.Name,
			Level:    it.Level,
			Coins:    it.Coins,
		})
	}
	return &LeaderboardResponse{Items: out, Limit: limit, Offset: offset}, nil
}

// Profile returns the player with energy reconciled to now, without writing
// the reconciliation back; reads must not contend with the mining engine.
func (s *Service) Profile(ctx context.Context, playerID string) (*ProfileResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	p, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	es := energy.State{Current: p.Energy, Max: p.MaxEnergy, LastReconciledAt: p.EnergyReconciledAt}
	return &ProfileResponse{
		PlayerID:     p.ID,
		Name:         p.Name,
		Level:        p.Level,
		Experience:   p.Experience,
		NextLevelXP:  store.ExperienceForLevel(p.Level + 1),
		Coins:        p.Coins,
		Energy:       energy.CurrentAt(s.ecfg, es, time.Now()),
		MaxEnergy:    p.MaxEnergy,
		MiningCycles: p.MiningCycles,
		CreatedAt:    p.CreatedAt,
	}, nil
}

func (s *Service) Sessions(ctx context.Context, playerID string, limit, offset int) (*SessionsResponse, error) {
	if playerID == "" {
		return nil, ErrInvalidRequest
	}
	items, err := s.store.ListSessionsByPlayer(ctx, playerID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]SessionItem, 0, len(items))
	for _, it := range items {
		out = append(out, SessionItem{
			SessionID:  it.ID,
			SceneID:    it.SceneID,
			SceneName:  it.SceneSnapshot.Name,
			Status:     it.Status,
			StartedAt:  it.StartedAt,
			EndedAt:    it.EndedAt,
			Cycles:     it.CyclesCompleted,
			Coins:      it.Coins,
			Experience: it.Experience,
			Items:      it.Items,
		})
	}
	return &SessionsResponse{Items: out, Limit: limit, Offset: offset}, nil
}
