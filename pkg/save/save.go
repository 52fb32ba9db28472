// Package save persists a game as a sealed, LZ4-compressed JSON document.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"netrunner/pkg/core"
	"netrunner/pkg/game"
	"netrunner/pkg/types"
)

var (
	ErrNoSave  = errors.New("no saved game")
	ErrCorrupt = errors.New("saved game is corrupt")
)

// Document is the persisted world. Keys are stable across versions; a
// missing key loads as its zero value.
type Document struct {
	Player        *types.PlayerState   `json:"player"`
	Nodes         []*types.Node        `json:"nodes"`
	Contracts     []*types.Contract    `json:"contracts"`
	Rivals        []*types.RivalHacker `json:"rivals"`
	WorldSeed     int64                `json:"world_seed"`
	GameEvents    []string             `json:"game_events"`
	BlackMarket   []types.Tool         `json:"black_market"`
	Tick          uint64               `json:"tick"`
	PendingSkills int                  `json:"pending_skill_points"`
}

func FromState(st game.State) Document {
	events := st.EventLog
	if extra := len(events) - game.EventLogKeep; extra > 0 {
		events = events[extra:]
	}
	return Document{
		Player:        st.Player,
		Nodes:         st.Nodes,
		Contracts:     st.Contracts,
		Rivals:        st.Rivals,
		WorldSeed:     st.Seed,
		GameEvents:    events,
		BlackMarket:   st.MarketTools,
		Tick:          st.Tick,
		PendingSkills: st.PendingSkills,
	}
}

func (d *Document) State() game.State {
	return game.State{
		Seed:          d.WorldSeed,
		Tick:          d.Tick,
		PendingSkills: d.PendingSkills,
		Player:        d.Player,
		Nodes:         d.Nodes,
		Contracts:     d.Contracts,
		Rivals:        d.Rivals,
		EventLog:      d.GameEvents,
		MarketTools:   d.BlackMarket,
	}
}

// Encode serializes st into a sealed container.
func Encode(st game.State, savedAt time.Time) ([]byte, error) {
	raw, err := json.Marshal(FromState(st))
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return core.Seal(raw, st.Tick, savedAt)
}

// Decode opens a sealed container. Any framing, checksum or JSON failure
// is reported as ErrCorrupt.
func Decode(b []byte) (*Document, error) {
	_, raw, err := core.Unseal(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return decodeJSON(raw)
}

func decodeJSON(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	doc.Player.Normalize()
	for _, n := range doc.Nodes {
		n.Normalize()
	}
	return &doc, nil
}

// validate rejects documents the game cannot run on: a missing player or
// network, and null entries in any collection.
func (d *Document) validate() error {
	if d.Player == nil || len(d.Nodes) == 0 {
		return errors.New("missing player or network")
	}
	for i, n := range d.Nodes {
		if n == nil {
			return fmt.Errorf("null node at %d", i)
		}
	}
	for i, c := range d.Contracts {
		if c == nil {
			return fmt.Errorf("null contract at %d", i)
		}
	}
	for i, r := range d.Rivals {
		if r == nil {
			return fmt.Errorf("null rival at %d", i)
		}
	}
	for name, f := range d.Player.Factions {
		if f == nil {
			return fmt.Errorf("null faction %q", name)
		}
	}
	for i, t := range d.Player.Inventory {
		if t == (types.Tool{}) {
			return fmt.Errorf("null inventory tool at %d", i)
		}
	}
	for i, t := range d.BlackMarket {
		if t == (types.Tool{}) {
			return fmt.Errorf("null market tool at %d", i)
		}
	}
	for i, b := range d.Player.Botnets {
		if b == (types.Botnet{}) {
			return fmt.Errorf("null botnet at %d", i)
		}
	}
	for slot, hw := range d.Player.Hardware {
		if hw == (types.HardwareComponent{}) {
			return fmt.Errorf("null hardware in slot %q", slot)
		}
	}
	for i, ev := range d.Player.ActiveEvents {
		if ev.EType == "" {
			return fmt.Errorf("null world event at %d", i)
		}
	}
	return nil
}

// Manager owns the save file locations. OnSave, when set, receives every
// container written by Save.
type Manager struct {
	Path       string
	LegacyPath string
	Logger     *log.Logger
	OnSave     func(container []byte, tick uint64, savedAt time.Time) error
	Now        func() time.Time
}

func NewManager(path, legacy string, logger *log.Logger) *Manager {
	return &Manager{Path: path, LegacyPath: legacy, Logger: logger}
}

func (m *Manager) logger() *log.Logger {
	if m.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return m.Logger
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now()
}

// Exists reports whether either save file is present.
func (m *Manager) Exists() bool {
	for _, p := range []string{m.Path, m.LegacyPath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// Save writes the game to Path, replacing any previous save atomically.
func (m *Manager) Save(g *game.Game) error {
	savedAt := m.now()
	st := g.State()
	b, err := Encode(st, savedAt)
	if err != nil {
		return err
	}

	if err := m.write(b); err != nil {
		return err
	}
	m.logger().Printf("Saved tick %d to %s (%s)", st.Tick, m.Path, humanize.Bytes(uint64(len(b))))

	if m.OnSave != nil {
		if err := m.OnSave(b, st.Tick, savedAt); err != nil {
			m.logger().Printf("Snapshot hook failed: %v", err)
		}
	}
	return nil
}

func (m *Manager) write(b []byte) error {
	if dir := filepath.Dir(m.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create save dir: %w", err)
		}
	}
	tmp := m.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if err := os.Rename(tmp, m.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace save: %w", err)
	}
	return nil
}

// Restore validates an archived container and makes it the current save.
func (m *Manager) Restore(container []byte) (*Document, error) {
	doc, err := Decode(container)
	if err != nil {
		return nil, err
	}
	if err := m.write(container); err != nil {
		return nil, err
	}
	m.logger().Printf("Restored tick %d to %s", doc.Tick, m.Path)
	return doc, nil
}

// TrySave is Save with the failure contained: it logs and reports false.
func (m *Manager) TrySave(g *game.Game) bool {
	if err := m.Save(g); err != nil {
		m.logger().Printf("Save failed: %v", err)
		return false
	}
	return true
}

// Load reads the sealed save, falling back to the legacy plain JSON file.
// It returns ErrNoSave when neither exists.
func (m *Manager) Load() (*Document, error) {
	b, err := os.ReadFile(m.Path)
	switch {
	case err == nil:
		doc, err := Decode(b)
		if err != nil {
			m.logger().Printf("Load %s: %v", m.Path, err)
			return nil, err
		}
		m.logger().Printf("Loaded tick %d from %s (%s)", doc.Tick, m.Path, humanize.Bytes(uint64(len(b))))
		return doc, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read save: %w", err)
	}

	if m.LegacyPath == "" {
		return nil, ErrNoSave
	}
	raw, err := os.ReadFile(m.LegacyPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy save: %w", err)
	}
	doc, err := decodeJSON(raw)
	if err != nil {
		m.logger().Printf("Load %s: %v", m.LegacyPath, err)
		return nil, err
	}
	m.logger().Printf("Loaded legacy save %s", m.LegacyPath)
	return doc, nil
}
