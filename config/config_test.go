package config

import "testing"

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.BrickResolutionThreshold != 96 {
		t.Errorf("BrickResolutionThreshold = %d, want 96", cfg.Storage.BrickResolutionThreshold)
	}
	if cfg.Generate.DefaultResolution != 32 {
		t.Errorf("DefaultResolution = %d, want 32", cfg.Generate.DefaultResolution)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	global = nil
	defer func() {
		if recover() == nil {
			t.Error("expected Cfg() to panic before Init()")
		}
	}()
	Cfg()
}

func TestInitThenCfg(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatal(err)
	}
	if Cfg().Numerics.NewtonMaxIterations != 8 {
		t.Errorf("NewtonMaxIterations = %d, want 8", Cfg().Numerics.NewtonMaxIterations)
	}
}
