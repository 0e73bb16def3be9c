package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *Default() {
		t.Fatalf("got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "cfront.toml", `
[log]
level = "debug"

[output]
color = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" || cfg.Output.Color {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Log.Format != "text" || !cfg.Output.ShowSource {
		t.Fatalf("missing keys should keep defaults: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("got level %s", cfg.SlogLevel())
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "cfront.yml", "log:\n  format: json\ndebug:\n  stack: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Format != "json" || !cfg.Debug.Stack || cfg.Log.Level != "warn" {
		t.Fatalf("got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if _, err := Load(writeFile(t, "bad.toml", "[log\n")); err == nil {
		t.Fatal("expected a TOML syntax error")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "log: [\n")); err == nil {
		t.Fatal("expected a YAML syntax error")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"a.toml": FormatTOML,
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a.conf": FormatTOML,
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("%s: got %s, want %s", path, got, want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CFRONT_LOG_LEVEL", "error")
	t.Setenv("CFRONT_LOG_FORMAT", "json")
	t.Setenv("CCDEBUG", "true")
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Log.Level != "error" || cfg.Log.Format != "json" || !cfg.Debug.Stack {
		t.Fatalf("got %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an invalid level")
	}
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Fatal("invalid levels should fall back to warn")
	}
	cfg = Default()
	cfg.Log.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an invalid format")
	}
}

func TestEncodeLoadsBack(t *testing.T) {
	want := Default()
	want.Log.Level = "info"
	for _, format := range []Format{FormatTOML, FormatYAML} {
		data, err := want.Encode(format)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Load(writeFile(t, "cfront."+format.String(), string(data)))
		if err != nil {
			t.Fatal(err)
		}
		if *got != *want {
			t.Fatalf("%s: got %+v, want %+v", format, got, want)
		}
	}
}
