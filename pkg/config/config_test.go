package config

import "testing"

func TestNewConfigDefaultsToRISCV(t *testing.T) {
	cfg := NewConfig()
	if cfg.Mode != ModeRISCV {
		t.Errorf("default Mode = %v, want ModeRISCV", cfg.Mode)
	}
}

func TestModeString(t *testing.T) {
	if ModeKoopa.String() != "-koopa" {
		t.Errorf("ModeKoopa.String() = %q, want -koopa", ModeKoopa.String())
	}
	if ModeRISCV.String() != "-riscv" {
		t.Errorf("ModeRISCV.String() = %q, want -riscv", ModeRISCV.String())
	}
}
