package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// MiningConfig holds the global accrual constants. Cycle cadence is global;
// per-cycle energy cost is scene-specific.
type MiningConfig struct {
	RecoveryIntervalMs        int64 `env:"ENERGY_RECOVERY_INTERVAL_MS" envDefault:"60000"`
	RecoveryAmountPerInterval int64 `env:"ENERGY_RECOVERY_AMOUNT" envDefault:"1"`
	CycleIntervalMs           int64 `env:"MINING_CYCLE_INTERVAL_MS" envDefault:"3000"`
	MaxAccrualHours           int64 `env:"MAX_ACCRUAL_HOURS" envDefault:"12"`
	AutoMineUnlockLevel       int   `env:"AUTO_MINE_UNLOCK_LEVEL" envDefault:"5"`
}

func LoadMining() (MiningConfig, error) {
	var cfg MiningConfig
	if err := env.Parse(&cfg); err != nil {
		return MiningConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return MiningConfig{}, err
	}
	return cfg, nil
}

func (c MiningConfig) Validate() error {
	if c.RecoveryIntervalMs < 1 {
		return fmt.Errorf("ENERGY_RECOVERY_INTERVAL_MS must be >= 1, got %d", c.RecoveryIntervalMs)
	}
	if c.RecoveryAmountPerInterval < 1 {
		return fmt.Errorf("ENERGY_RECOVERY_AMOUNT must be >= 1, got %d", c.RecoveryAmountPerInterval)
	}
	if c.CycleIntervalMs < 1 {
		return fmt.Errorf("MINING_CYCLE_INTERVAL_MS must be >= 1, got %d", c.CycleIntervalMs)
	}
	if c.MaxAccrualHours < 1 {
		return fmt.Errorf("MAX_ACCRUAL_HOURS must be >= 1, got %d", c.MaxAccrualHours)
	}
	if c.AutoMineUnlockLevel < 1 {
		return fmt.Errorf("AUTO_MINE_UNLOCK_LEVEL must be >= 1, got %d", c.AutoMineUnlockLevel)
	}
	return nil
}
