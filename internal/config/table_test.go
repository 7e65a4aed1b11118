package config

import (
	"testing"
	"time"
)

func TestLoadTableDefaults(t *testing.T) {
	cfg, err := LoadTable()
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if cfg.SmallBlind != 5 || cfg.BigBlind != 10 {
		t.Fatalf("blinds = %d/%d, want 5/10", cfg.SmallBlind, cfg.BigBlind)
	}
	if cfg.DecisionTimeout != 30*time.Second {
		t.Fatalf("DecisionTimeout = %v, want 30s", cfg.DecisionTimeout)
	}
	if cfg.LiveHands != 3 {
		t.Fatalf("LiveHands = %d, want 3", cfg.LiveHands)
	}
	if cfg.RevealPolicy != "standard" {
		t.Fatalf("RevealPolicy = %q, want standard", cfg.RevealPolicy)
	}
}

func TestLoadTableOverrides(t *testing.T) {
	t.Setenv("TABLE_BIG_BLIND", "50")
	t.Setenv("TABLE_ANTE", "5")
	t.Setenv("TABLE_DECISION_TIMEOUT", "5s")
	t.Setenv("TABLE_SHORT_ALLIN_REOPENS", "true")

	cfg, err := LoadTable()
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if cfg.BigBlind != 50 || cfg.Ante != 5 {
		t.Fatalf("unexpected table config: %+v", cfg)
	}
	if cfg.DecisionTimeout != 5*time.Second || !cfg.ShortAllInReopens {
		t.Fatalf("unexpected table config: %+v", cfg)
	}
}
