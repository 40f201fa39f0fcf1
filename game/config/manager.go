package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/wordduel/game/engine"
)

var (
	ErrRulesNotFound = errors.New("rules profile not found")
	ErrInvalidRules  = errors.New("invalid rules profile")
)

// RulesInfo describes one selectable rules profile
type RulesInfo struct {
	ConfigID    string `json:"config_id"`
	Filename    string `json:"filename,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StrictTurns bool   `json:"strict_turns"`
	WordLength  int    `json:"word_length"`
	Builtin     bool   `json:"builtin"`
}

// Manager handles rules profile loading and caching
type Manager struct {
	configDir    string
	defaultID    string
	defaultRules *engine.Rules
	rules        map[string]*engine.Rules
	mu           sync.RWMutex
}

// NewManager creates a manager reading <name>.json profiles from configDir.
// A missing directory leaves only the built-in profiles available.
func NewManager(configDir string) (*Manager, error) {
	if info, err := os.Stat(configDir); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config directory: %w", err)
		}
		log.Warn().Str("dir", configDir).Msg("config directory does not exist, using built-in rules")
	} else if !info.IsDir() {
		return nil, fmt.Errorf("config path is not a directory: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		rules:     make(map[string]*engine.Rules),
	}

	if err := m.loadDefaultRules(); err != nil {
		return nil, fmt.Errorf("failed to load default rules: %w", err)
	}

	return m, nil
}

// LoadRules loads a profile by name. Files in the config directory take
// precedence over the built-in profiles of the same name.
func (m *Manager) LoadRules(name string) (*engine.Rules, error) {
	name = normalizeName(name)
	if err := checkName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if rules, exists := m.rules[name]; exists {
		m.mu.RUnlock()
		return rules, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if rules, exists := m.rules[name]; exists {
		return rules, nil
	}

	rules, err := m.readFile(name)
	if errors.Is(err, os.ErrNotExist) {
		builtin, ok := engine.BuiltinRules()[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRulesNotFound, name)
		}
		rules, err = &builtin, nil
	}
	if err != nil {
		return nil, err
	}

	m.rules[name] = rules
	return rules, nil
}

// ListRules returns every available profile sorted by id
func (m *Manager) ListRules() ([]*RulesInfo, error) {
	byID := make(map[string]*RulesInfo)
	for id, rules := range engine.BuiltinRules() {
		byID[id] = newRulesInfo(id, "", rules, true)
	}

	entries, err := os.ReadDir(m.configDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		rules, err := m.LoadRules(id)
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping invalid rules file")
			continue
		}
		byID[id] = newRulesInfo(id, entry.Name(), *rules, false)
	}

	result := make([]*RulesInfo, 0, len(byID))
	for _, info := range byID {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ConfigID < result[j].ConfigID })
	return result, nil
}

// GetDefault returns the default profile
func (m *Manager) GetDefault() engine.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.defaultRules
}

// SetDefault sets the default profile by name
func (m *Manager) SetDefault(name string) error {
	rules, err := m.LoadRules(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = normalizeName(name)
	m.defaultRules = rules
	return nil
}

// DefaultID returns the profile id of the default rules
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// RefreshCache drops cached profiles and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	current := m.defaultID
	m.rules = make(map[string]*engine.Rules)
	m.mu.Unlock()

	if err := m.SetDefault(current); err == nil {
		return nil
	}
	return m.loadDefaultRules()
}

// SaveRules validates and writes a profile to <name>.json
func (m *Manager) SaveRules(name string, rules *engine.Rules) error {
	name = normalizeName(name)
	if err := checkName(name); err != nil {
		return err
	}
	if err := engine.ValidateRules(rules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	if err := os.MkdirAll(m.configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, name+".json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	saved := *rules
	m.mu.Lock()
	m.rules[name] = &saved
	m.mu.Unlock()

	return nil
}

// loadDefaultRules prefers classic from disk and falls back to the built-in
// classic profile when that file is broken
func (m *Manager) loadDefaultRules() error {
	rules, err := m.LoadRules(engine.RulesClassic)
	if err != nil {
		log.Warn().Err(err).Msg("classic rules file unusable, using built-in profile")
		builtin := engine.DefaultRules()
		rules = &builtin
	}

	m.mu.Lock()
	m.defaultID = engine.RulesClassic
	m.defaultRules = rules
	m.mu.Unlock()
	return nil
}

func (m *Manager) readFile(name string) (*engine.Rules, error) {
	data, err := os.ReadFile(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules engine.Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidRules, name, err)
	}
	if err := engine.ValidateRules(&rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return &rules, nil
}

func normalizeName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".json")
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: bad profile name %q", ErrInvalidRules, name)
	}
	return nil
}

func newRulesInfo(id, filename string, rules engine.Rules, builtin bool) *RulesInfo {
	return &RulesInfo{
		ConfigID:    id,
		Filename:    filename,
		Name:        rules.Name,
		Description: rules.Description,
		StrictTurns: rules.StrictTurns,
		WordLength:  rules.WordLength,
		Builtin:     builtin,
	}
}
