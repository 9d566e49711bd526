package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Defaults() {
		t.Errorf("got %+v, want defaults", cfg)
	}

	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestLoadMergesMissingFields(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	dir := filepath.Join(tmp, "dictate")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	// Old file that predates auto_type_method.
	content := `{"hotkey": "right_alt", "add_trailing_space": false}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Hotkey != "right_alt" {
		t.Errorf("Hotkey = %q, want right_alt", cfg.Hotkey)
	}
	if cfg.AddTrailingSpace {
		t.Error("AddTrailingSpace = true, want false")
	}
	if cfg.AutoTypeMethod != MethodClipboardPaste {
		t.Errorf("AutoTypeMethod = %q, want default", cfg.AutoTypeMethod)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Config{
		Hotkey:           "left_ctrl_left_alt",
		AutoTypeMethod:   MethodCopyOnly,
		AddTrailingSpace: false,
	}
	if err := Save(want); err != nil {
		t.Fatal(err)
	}
	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPresetByName(t *testing.T) {
	p := PresetByName("left_ctrl_left_alt")
	if len(p.Codes) != 2 {
		t.Errorf("got %d codes, want 2", len(p.Codes))
	}

	// Unknown names fall back to the default preset.
	p = PresetByName("bogus")
	if p.Name != Defaults().Hotkey {
		t.Errorf("fallback preset = %q, want %q", p.Name, Defaults().Hotkey)
	}
}

func TestLoadRejectsUnknownMethod(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	dir := filepath.Join(tmp, "dictate")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `{"auto_type_method": "osascript"}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AutoTypeMethod != MethodClipboardPaste {
		t.Errorf("AutoTypeMethod = %q, want default", cfg.AutoTypeMethod)
	}
}
