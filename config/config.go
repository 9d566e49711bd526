// Package config reads and writes the JSON configuration at the user
// config dir. Fields missing from an existing file are filled with
// defaults on load, so new options pick up sane values without
// clobbering the user's file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Paste methods.
const (
	MethodClipboardPaste = "clipboard_paste" // copy + synthetic paste keystroke, restore previous clipboard
	MethodCopyOnly       = "copy_only"       // copy to clipboard, no keystroke
)

type Config struct {
	Hotkey           string `json:"hotkey"`
	AutoTypeMethod   string `json:"auto_type_method"`
	AddTrailingSpace bool   `json:"add_trailing_space"`
}

func Defaults() Config {
	return Config{
		Hotkey:           "right_cmd",
		AutoTypeMethod:   MethodClipboardPaste,
		AddTrailingSpace: true,
	}
}

// Preset is one entry of the closed set of supported hotkey combos.
type Preset struct {
	Name  string
	Label string
	// Codes are linux evdev key codes; every constituent must be held
	// for the combo to fire.
	Codes []uint16
}

// Linux evdev codes from input-event-codes.h.
const (
	codeLeftCtrl  = 29
	codeLeftAlt   = 56
	codeRightAlt  = 100
	codeRightMeta = 126
)

var presets = []Preset{
	{Name: "right_cmd", Label: "Right Command", Codes: []uint16{codeRightMeta}},
	{Name: "right_alt", Label: "Right Alt", Codes: []uint16{codeRightAlt}},
	{Name: "left_ctrl_left_alt", Label: "Left Ctrl + Left Alt", Codes: []uint16{codeLeftCtrl, codeLeftAlt}},
}

// PresetByName returns the named hotkey preset, falling back to the
// default preset for unknown names.
func PresetByName(name string) Preset {
	for _, p := range presets {
		if p.Name == name {
			return p
		}
	}
	return PresetByName(Defaults().Hotkey)
}

// Presets returns the closed set of supported hotkey combos.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "dictate"), nil
}

func path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file, creating it with defaults if missing.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Defaults(), err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		cfg := Defaults()
		if err := Save(cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return Defaults(), err
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parsing %s: %w", p, err)
	}
	if cfg.AutoTypeMethod != MethodClipboardPaste && cfg.AutoTypeMethod != MethodCopyOnly {
		cfg.AutoTypeMethod = Defaults().AutoTypeMethod
	}
	return cfg, nil
}

// Save persists the config, creating the config dir if needed.
func Save(cfg Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, append(data, '\n'), 0644)
}
