package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netrunner/pkg/config"
	"netrunner/pkg/game"
	"netrunner/pkg/save"
	"netrunner/pkg/types"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Seed = 42
	cfg.Handle = "tester"
	return cfg
}

func testSaves(t *testing.T) *save.Manager {
	dir := t.TempDir()
	return save.NewManager(filepath.Join(dir, "save.lz4"), filepath.Join(dir, "save.json"), nil)
}

func newTestConsole(saves *save.Manager, input string) (*console, *bytes.Buffer) {
	var out bytes.Buffer
	c := newConsole(bufio.NewReader(strings.NewReader(input)), &out, saves, time.Hour)
	return c, &out
}

func TestQuitSaves(t *testing.T) {
	saves := testSaves(t)
	c, out := newTestConsole(saves, "status\nquit\n")
	c.start(testConfig(), false)
	c.run()

	assert.Contains(t, out.String(), "tester")
	assert.Contains(t, out.String(), "Progress saved")
	assert.Equal(t, uint64(2), c.g.Tick)

	doc, err := saves.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(42), doc.WorldSeed)
	assert.Equal(t, uint64(2), doc.Tick)
}

func TestInvalidInputDoesNotTick(t *testing.T) {
	c, out := newTestConsole(testSaves(t), "bogus\n\nmove\nbuy tool x\nquit\n")
	c.start(testConfig(), false)
	c.run()

	assert.Equal(t, uint64(1), c.g.Tick)
	assert.Contains(t, out.String(), `Unknown command "bogus"`)
	assert.Contains(t, out.String(), "Usage: move <node>")
	assert.Contains(t, out.String(), "Invalid selection.")
}

func TestEndOfInputSaves(t *testing.T) {
	saves := testSaves(t)
	c, _ := newTestConsole(saves, "status")
	c.start(testConfig(), false)
	c.run()
	assert.True(t, saves.Exists())
}

func TestResumeSavedGame(t *testing.T) {
	saves := testSaves(t)
	g := game.NewGame(game.Options{Seed: 777, Handle: "veteran"})
	g.Player.Credits = 12345
	require.NoError(t, saves.Save(g))

	c, out := newTestConsole(saves, "y\nquit\n")
	c.start(testConfig(), false)

	assert.Equal(t, int64(777), c.g.Seed())
	assert.Equal(t, 12345, c.g.Player.Credits)
	assert.Contains(t, out.String(), "Welcome back, veteran")
}

func TestDeclineSavedGame(t *testing.T) {
	saves := testSaves(t)
	require.NoError(t, saves.Save(game.NewGame(game.Options{Seed: 777})))

	c, _ := newTestConsole(saves, "n\n")
	c.start(testConfig(), false)
	assert.Equal(t, int64(42), c.g.Seed())
}

func TestCorruptSaveStartsNewGame(t *testing.T) {
	saves := testSaves(t)
	require.NoError(t, os.WriteFile(saves.Path, []byte("garbage"), 0o644))

	c, out := newTestConsole(saves, "y\n")
	c.start(testConfig(), false)

	assert.Contains(t, out.String(), "could not be loaded")
	assert.Equal(t, int64(42), c.g.Seed())
}

func TestPendingSkillChoice(t *testing.T) {
	c, out := newTestConsole(testSaves(t), "9\n2\nquit\n")
	c.start(testConfig(), false)
	c.g.PendingSkills = 1
	c.run()

	assert.Contains(t, out.String(), "LEVEL UP!")
	assert.Contains(t, out.String(), "Invalid selection.")
	assert.Zero(t, c.g.PendingSkills)
	assert.Equal(t, 2, c.g.Player.Skills.Get(types.SkillExploitation))
}

func TestNodeArgument(t *testing.T) {
	c, out := newTestConsole(testSaves(t), "")
	c.start(testConfig(), false)

	cur := c.g.Player.CurrentLocation
	uid, ok := c.node(".")
	assert.True(t, ok)
	assert.Equal(t, cur, uid)

	uid, ok = c.node(cur[:6])
	assert.True(t, ok)
	assert.Equal(t, cur, uid)

	uid, ok = c.node(strings.ToUpper(c.g.CurrentNode().Name))
	assert.True(t, ok)
	assert.Equal(t, cur, uid)

	_, ok = c.node("nowhere")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Unknown node")
}

func TestNodeDetailsNeedDiscovery(t *testing.T) {
	c, out := newTestConsole(testSaves(t), "")
	c.start(testConfig(), false)

	var hidden string
	for uid := range c.g.Network.Nodes {
		if !c.g.Player.DiscoveredNodes.Has(uid) {
			hidden = uid
			break
		}
	}
	require.NotEmpty(t, hidden)
	c.tickDue = false

	c.dispatch("traffic", []string{hidden})
	c.dispatch("employees", []string{hidden})
	assert.Equal(t, 2, strings.Count(out.String(), "not discovered"))
	assert.False(t, c.tickDue)

	c.dispatch("employees", []string{c.g.Player.CurrentLocation})
	assert.True(t, c.tickDue)
}

func TestNodeDetailsWithoutLocation(t *testing.T) {
	c, out := newTestConsole(testSaves(t), "")
	c.start(testConfig(), false)
	c.g.Player.CurrentLocation = ""
	c.tickDue = false

	assert.NotPanics(t, func() {
		c.dispatch("employees", []string{"."})
		c.dispatch("traffic", []string{"."})
	})
	assert.Contains(t, out.String(), "unknown node")
	assert.False(t, c.tickDue)
}
