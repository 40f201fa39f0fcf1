package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/wordduel/game/engine"
)

func writeRulesFile(t *testing.T, dir, name string, rules engine.Rules) {
	t.Helper()
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal rules: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}
}

func speedRules() engine.Rules {
	return engine.Rules{
		Name:        "Speed",
		Description: "Four letters, strict turns",
		StrictTurns: true,
		WordLength:  4,
	}
}

func TestNewManager(t *testing.T) {
	t.Run("empty directory uses built-in classic", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault(); got != engine.DefaultRules() {
			t.Errorf("Expected built-in classic, got %+v", got)
		}
		if manager.DefaultID() != engine.RulesClassic {
			t.Errorf("Expected default id classic, got %s", manager.DefaultID())
		}
	})

	t.Run("missing directory is tolerated", func(t *testing.T) {
		manager, err := NewManager(filepath.Join(t.TempDir(), "nope"))
		if err != nil {
			t.Fatalf("Expected built-in fallback, got error: %v", err)
		}
		if manager.GetDefault().Name != engine.RulesClassic {
			t.Errorf("Expected classic default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("file path is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewManager(path); err == nil {
			t.Error("Expected error when config dir is a file")
		}
	})

	t.Run("classic file overrides built-in", func(t *testing.T) {
		dir := t.TempDir()
		custom := engine.DefaultRules()
		custom.Description = "house rules"
		writeRulesFile(t, dir, "classic", custom)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Description != "house rules" {
			t.Errorf("Expected file profile, got %+v", manager.GetDefault())
		}
	})

	t.Run("broken classic file falls back", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "classic.json"), []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault() != engine.DefaultRules() {
			t.Errorf("Expected built-in classic, got %+v", manager.GetDefault())
		}
	})
}

func TestManager_LoadRules(t *testing.T) {
	dir := t.TempDir()
	writeRulesFile(t, dir, "speed", speedRules())
	writeRulesFile(t, dir, "bad", engine.Rules{Name: "", WordLength: 3})

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load file profile", func(t *testing.T) {
		rules, err := manager.LoadRules("speed")
		if err != nil {
			t.Fatalf("Failed to load rules: %v", err)
		}
		if *rules != speedRules() {
			t.Errorf("Expected %+v, got %+v", speedRules(), *rules)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		rules, err := manager.LoadRules("speed.json")
		if err != nil {
			t.Fatalf("Failed to load rules with extension: %v", err)
		}
		if rules.WordLength != 4 {
			t.Errorf("Expected word length 4, got %d", rules.WordLength)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		first, _ := manager.LoadRules("speed")
		second, err := manager.LoadRules("speed")
		if err != nil {
			t.Fatalf("Failed to load rules from cache: %v", err)
		}
		if first != second {
			t.Error("Expected rules to be loaded from cache")
		}
	})

	t.Run("built-in strict without a file", func(t *testing.T) {
		rules, err := manager.LoadRules(engine.RulesStrict)
		if err != nil {
			t.Fatalf("Failed to load strict: %v", err)
		}
		if *rules != engine.StrictRules() {
			t.Errorf("Expected built-in strict, got %+v", *rules)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := manager.LoadRules("nonexistent")
		if !errors.Is(err, ErrRulesNotFound) {
			t.Errorf("Expected ErrRulesNotFound, got %v", err)
		}
	})

	t.Run("invalid profile", func(t *testing.T) {
		_, err := manager.LoadRules("bad")
		if !errors.Is(err, ErrInvalidRules) {
			t.Errorf("Expected ErrInvalidRules, got %v", err)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		for _, name := range []string{"../speed", "a/b", "", ".."} {
			if _, err := manager.LoadRules(name); !errors.Is(err, ErrInvalidRules) {
				t.Errorf("LoadRules(%q): expected ErrInvalidRules, got %v", name, err)
			}
		}
	})
}

func TestManager_ListRules(t *testing.T) {
	dir := t.TempDir()
	writeRulesFile(t, dir, "speed", speedRules())
	writeRulesFile(t, dir, "bad", engine.Rules{})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	infos, err := manager.ListRules()
	if err != nil {
		t.Fatalf("Failed to list rules: %v", err)
	}

	var ids []string
	for _, info := range infos {
		ids = append(ids, info.ConfigID)
	}
	want := []string{"classic", "speed", "strict"}
	if len(ids) != len(want) {
		t.Fatalf("Expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, ids)
			break
		}
	}

	for _, info := range infos {
		switch info.ConfigID {
		case "speed":
			if info.Builtin || info.Filename != "speed.json" || info.WordLength != 4 {
				t.Errorf("Unexpected speed info %+v", info)
			}
		case "classic", "strict":
			if !info.Builtin {
				t.Errorf("Expected %s to be built-in", info.ConfigID)
			}
		}
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeRulesFile(t, dir, "speed", speedRules())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("speed"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if manager.GetDefault() != speedRules() {
		t.Errorf("Expected speed as default, got %+v", manager.GetDefault())
	}
	if manager.DefaultID() != "speed" {
		t.Errorf("Expected default id speed, got %s", manager.DefaultID())
	}

	if err := manager.SetDefault("missing"); !errors.Is(err, ErrRulesNotFound) {
		t.Errorf("Expected ErrRulesNotFound, got %v", err)
	}
	if manager.DefaultID() != "speed" {
		t.Error("Failed SetDefault must not change the default")
	}
}

func TestManager_SaveRules(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("save creates the directory and file", func(t *testing.T) {
		rules := speedRules()
		if err := manager.SaveRules("speed", &rules); err != nil {
			t.Fatalf("Failed to save rules: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "speed.json"))
		if err != nil {
			t.Fatalf("Saved file missing: %v", err)
		}
		var onDisk engine.Rules
		if err := json.Unmarshal(data, &onDisk); err != nil {
			t.Fatalf("Saved file is not JSON: %v", err)
		}
		if onDisk != rules {
			t.Errorf("Expected %+v on disk, got %+v", rules, onDisk)
		}

		loaded, err := manager.LoadRules("speed")
		if err != nil || *loaded != rules {
			t.Errorf("Expected cached rules after save, got %+v, %v", loaded, err)
		}
	})

	t.Run("invalid rules are not written", func(t *testing.T) {
		rules := engine.Rules{Name: "huge", WordLength: engine.MaxWordLength + 1}
		if err := manager.SaveRules("huge", &rules); !errors.Is(err, ErrInvalidRules) {
			t.Errorf("Expected ErrInvalidRules, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "huge.json")); !os.IsNotExist(err) {
			t.Error("Invalid rules should not be written")
		}
	})
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeRulesFile(t, dir, "speed", speedRules())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if err := manager.SetDefault("speed"); err != nil {
		t.Fatal(err)
	}

	updated := speedRules()
	updated.WordLength = 6
	writeRulesFile(t, dir, "speed", updated)

	if rules, _ := manager.LoadRules("speed"); rules.WordLength != 4 {
		t.Errorf("Expected cached word length 4 before refresh, got %d", rules.WordLength)
	}

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh: %v", err)
	}
	if manager.GetDefault().WordLength != 6 {
		t.Errorf("Expected refreshed default word length 6, got %d", manager.GetDefault().WordLength)
	}

	if err := os.Remove(filepath.Join(dir, "speed.json")); err != nil {
		t.Fatal(err)
	}
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh: %v", err)
	}
	if manager.DefaultID() != engine.RulesClassic {
		t.Errorf("Expected fallback to classic after the file vanished, got %s", manager.DefaultID())
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeRulesFile(t, dir, "speed", speedRules())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "speed"
			if i%2 == 0 {
				name = engine.RulesStrict
			}
			if _, err := manager.LoadRules(name); err != nil {
				t.Errorf("LoadRules(%s): %v", name, err)
			}
			_ = manager.GetDefault()
			if _, err := manager.ListRules(); err != nil {
				t.Errorf("ListRules: %v", err)
			}
		}(i)
	}
	wg.Wait()
}
