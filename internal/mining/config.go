package mining

import (
	"time"

	"orevein/internal/config"
	"orevein/internal/energy"
)

// Config is the accrual engine's tuning, converted once at startup from the
// environment-backed config.MiningConfig.
type Config struct {
	Energy              energy.Config
	CycleInterval       time.Duration
	MaxAccrual          time.Duration
	AutoMineUnlockLevel int
}

func NewConfig(c config.MiningConfig) Config {
	return Config{
		Energy: energy.Config{
			RecoveryInterval: time.Duration(c.RecoveryIntervalMs) * time.Millisecond,
			RecoveryAmount:   c.RecoveryAmountPerInterval,
		},
		CycleInterval:       time.Duration(c.CycleIntervalMs) * time.Millisecond,
		MaxAccrual:          time.Duration(c.MaxAccrualHours) * time.Hour,
		AutoMineUnlockLevel: c.AutoMineUnlockLevel,
	}
}
