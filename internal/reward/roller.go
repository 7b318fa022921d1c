package reward

import (
	"math/rand"
	"sync"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// DropEntry is one rarity tier of a scene's drop table. Tiers are rolled as
// independent Bernoulli trials: a single cycle may drop items from several
// tiers at once, or none.
type DropEntry struct {
	Name   string  `json:"name"`
	Rarity Rarity  `json:"rarity"`
	Rate   float64 `json:"rate"`
	Value  int64   `json:"value"`
}

// Scene is the immutable value snapshot a session rolls against. It is copied
// out of the catalog at session start and never refreshed mid-session.
type Scene struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	UnlockLevel        int         `json:"unlock_level"`
	EnergyCostPerCycle int64       `json:"energy_cost_per_cycle"`
	CoinsMin           int64       `json:"coins_min"`
	CoinsMax           int64       `json:"coins_max"`
	BaseExperience     int64       `json:"base_experience"`
	Drops              []DropEntry `json:"drops"`
}

type Item struct {
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
	Value  int64  `json:"value"`
}

// Outcome is one cycle's reward. Never mutated after creation.
type Outcome struct {
	Coins      int64
	Experience int64
	Items      []Item
}

// Roller produces cycle outcomes from an injectable random source, so tests
// can replay the exact same outcome sequence from a seed.
type Roller struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRoller(src rand.Source) *Roller {
	return &Roller{rnd: rand.New(src)}
}

func NewSeededRoller(seed int64) *Roller {
	return NewRoller(rand.NewSource(seed))
}

// levelScale is the over-level bonus: +5% per level above the scene's unlock
// level, never a penalty below it.
func levelScale(scene Scene, playerLevel int) float64 {
	over := playerLevel - scene.UnlockLevel
	if over < 0 {
		over = 0
	}
	return 1 + 0.05*float64(over)
}

// RollCycle produces one mining cycle's outcome for the given scene snapshot
// and player level.
func (r *Roller) RollCycle(scene Scene, playerLevel int) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	scale := levelScale(scene, playerLevel)
	coins := scene.CoinsMin
	if span := scene.CoinsMax - scene.CoinsMin; span > 0 {
		coins += r.rnd.Int63n(span + 1)
	}
	out := Outcome{
		Coins:      int64(float64(coins) * scale),
		Experience: int64(float64(scene.BaseExperience) * scale),
	}
	for _, d := range scene.Drops {
		if d.Rate <= 0 {
			continue
		}
		if r.rnd.Float64() < d.Rate {
			out.Items = append(out.Items, Item{Name: d.Name, Rarity: d.Rarity, Value: d.Value})
		}
	}
	return out
}
