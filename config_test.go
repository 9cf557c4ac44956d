package main

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"BOARD_ADDR", "BOARD_DATA_DIR", "BOARD_STATIC_DIR", "BOARD_ENV", "BOARD_EXPOSE_ERRORS", "BOARD_MAX_BODY_BYTES"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "0.0.0.0:5077" || cfg.DataDir != "." || cfg.StaticDir != "wwwroot" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.IsDevelopment() || !cfg.ExposeErrors {
		t.Fatalf("expected development defaults, got %+v", cfg)
	}
	if cfg.MaxBodyBytes != 65536 {
		t.Fatalf("expected 65536, got %d", cfg.MaxBodyBytes)
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("BOARD_ADDR", ":9000")
	t.Setenv("BOARD_DATA_DIR", "/env/data")
	t.Setenv("BOARD_ENV", "production")
	t.Setenv("BOARD_EXPOSE_ERRORS", "")
	t.Setenv("BOARD_MAX_BODY_BYTES", "")

	cfg, err := LoadConfig([]string{"--addr", ":7000"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("flag should win, got %q", cfg.Addr)
	}
	if cfg.DataDir != "/env/data" {
		t.Fatalf("env should win over default, got %q", cfg.DataDir)
	}
	if cfg.IsDevelopment() || cfg.ExposeErrors {
		t.Fatalf("production should hide error detail, got %+v", cfg)
	}

	cfg, err = LoadConfig([]string{"--expose-errors", "true"})
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.ExposeErrors {
		t.Fatal("--expose-errors true ignored")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("BOARD_ENV", "")
	t.Setenv("BOARD_EXPOSE_ERRORS", "")
	t.Setenv("BOARD_MAX_BODY_BYTES", "")

	for _, args := range [][]string{
		{"--env", "staging"},
		{"--max-body", "0"},
		{"--expose-errors", "maybe"},
		{"--nope"},
	} {
		if _, err := LoadConfig(args); err == nil {
			t.Fatalf("LoadConfig(%v): expected an error", args)
		}
	}

	t.Setenv("BOARD_MAX_BODY_BYTES", "lots")
	if _, err := LoadConfig(nil); err == nil {
		t.Fatal("expected an error for a non-numeric BOARD_MAX_BODY_BYTES")
	}
}
