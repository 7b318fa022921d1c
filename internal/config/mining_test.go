package config

import "testing"

func TestLoadMiningDefaults(t *testing.T) {
	cfg, err := LoadMining()
	if err != nil {
		t.Fatalf("load mining config: %v", err)
	}
	if cfg.RecoveryIntervalMs != 60000 {
		t.Fatalf("expected default recovery interval 60000, got %d", cfg.RecoveryIntervalMs)
	}
	if cfg.CycleIntervalMs != 3000 {
		t.Fatalf("expected default cycle interval 3000, got %d", cfg.CycleIntervalMs)
	}
	if cfg.MaxAccrualHours != 12 {
		t.Fatalf("expected default max accrual 12h, got %d", cfg.MaxAccrualHours)
	}
}

func TestLoadMiningEnvOverride(t *testing.T) {
	t.Setenv("MINING_CYCLE_INTERVAL_MS", "10000")
	t.Setenv("AUTO_MINE_UNLOCK_LEVEL", "3")
	cfg, err := LoadMining()
	if err != nil {
		t.Fatalf("load mining config: %v", err)
	}
	if cfg.CycleIntervalMs != 10000 {
		t.Fatalf("expected cycle interval 10000, got %d", cfg.CycleIntervalMs)
	}
	if cfg.AutoMineUnlockLevel != 3 {
		t.Fatalf("expected unlock level 3, got %d", cfg.AutoMineUnlockLevel)
	}
}

func TestMiningValidateRejectsZeroInterval(t *testing.T) {
	cfg := MiningConfig{
		RecoveryIntervalMs:        0,
		RecoveryAmountPerInterval: 1,
		CycleIntervalMs:           3000,
		MaxAccrualHours:           12,
		AutoMineUnlockLevel:       5,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero recovery interval")
	}
}
