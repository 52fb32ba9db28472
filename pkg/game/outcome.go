package game

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"netrunner/pkg/types"
)

// Delta is the numeric change an action caused.
type Delta struct {
	Credits      int
	Experience   int
	Reputation   int
	Heat         int
	IdentityHeat int
	Firewall     int
	Trace        float64
}

// Outcome is the structured result of a command: narration for the
// presentation layer plus what changed.
type Outcome struct {
	Lines        []string
	Delta        Delta
	Compromised  bool
	Traced       bool
	LevelsGained int
	SessionEnded bool
	Challenge    *Challenge
}

func (o *Outcome) say(format string, args ...any) {
	o.Lines = append(o.Lines, fmt.Sprintf(format, args...))
}

// credits formats an amount the way narration shows money.
func credits(n int) string {
	return humanize.Comma(int64(n)) + " BTC"
}

type meter struct {
	credits, reputation, heat, identity, firewall int
	trace                                          float64
}

func (g *Game) measure(node *types.Node) meter {
	m := meter{
		credits:    g.Player.Credits,
		reputation: g.Player.Reputation,
		heat:       g.Player.HeatLevel,
		identity:   g.Player.IdentityHeat,
	}
	if node != nil {
		m.firewall = node.FirewallStrength
		m.trace = node.TraceProgress
	}
	return m
}

// begin opens an outcome and returns a func that fills in the deltas
// measured against the state at the time of the call.
func (g *Game) begin(node *types.Node) (*Outcome, func() *Outcome) {
	o := &Outcome{}
	before := g.measure(node)
	return o, func() *Outcome {
		after := g.measure(node)
		o.Delta.Credits = after.credits - before.credits
		o.Delta.Reputation = after.reputation - before.reputation
		o.Delta.Heat = after.heat - before.heat
		o.Delta.IdentityHeat = after.identity - before.identity
		o.Delta.Firewall = after.firewall - before.firewall
		o.Delta.Trace = after.trace - before.trace
		return o
	}
}
