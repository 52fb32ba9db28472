package game

import (
	"fmt"
	"slices"

	"netrunner/pkg/types"
)

// OpenContracts are the contracts still neither completed nor failed.
func (g *Game) OpenContracts() []*types.Contract {
	var out []*types.Contract
	for _, c := range g.Contracts {
		if !c.Completed && !c.Failed {
			out = append(out, c)
		}
	}
	return out
}

// ContractBoard lists open contracts, posting a fresh batch when the board
// runs low.
func (g *Game) ContractBoard() []*types.Contract {
	if len(g.OpenContracts()) < MinActiveContracts {
		now := g.Player.GameTime
		for i := 0; i < InitialContracts; i++ {
			c, ok := GenerateContract(g.rng, g.catalog, g.Network, g.Player.Level, g.Player.Factions, now)
			if !ok {
				continue
			}
			g.Contracts = append(g.Contracts, c)
		}
	}
	return g.OpenContracts()
}

func (g *Game) contract(uid string) (*types.Contract, error) {
	for _, c := range g.Contracts {
		if c.UID == uid {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: contract %s", ErrInvalidSelection, uid)
}

// AcceptContract takes on a contract and reveals its target.
func (g *Game) AcceptContract(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	c, err := g.contract(uid)
	if err != nil {
		return nil, err
	}
	if c.Completed || c.Failed {
		return nil, fmt.Errorf("%w: contract %s is closed", ErrInvalidSelection, uid)
	}

	p := g.Player
	o := &Outcome{}
	if !slices.Contains(p.ActiveContracts, c.UID) {
		p.ActiveContracts = append(p.ActiveContracts, c.UID)
	}
	p.DiscoveredNodes.Add(c.TargetNodeUID)
	if c.Faction != nil {
		if f, ok := p.Factions[*c.Faction]; ok {
			f.Reputation += 5
		}
	}
	o.say("Contract accepted: %s", c.Title)
	return o, nil
}

func (g *Game) completeContract(o *Outcome, c *types.Contract) {
	p := g.Player
	c.Completed = true
	p.Credits += c.Reward
	p.Reputation += c.ReputationChange
	p.CompletedContracts.Add(c.UID)
	p.ActiveContracts = slices.DeleteFunc(p.ActiveContracts, func(id string) bool { return id == c.UID })
	o.say("Contract completed! Bonus: %s", credits(c.Reward))
	g.LogEvent("Contract completed: " + c.Title)
}

// expireContracts fails open contracts whose deadline has passed in game
// time.
func (g *Game) expireContracts() {
	now := g.Player.GameTime
	p := g.Player
	for _, c := range g.Contracts {
		if c.Completed || c.Failed || c.Deadline == nil || !now.After(*c.Deadline) {
			continue
		}
		c.Failed = true
		p.ActiveContracts = slices.DeleteFunc(p.ActiveContracts, func(id string) bool { return id == c.UID })
		g.LogEvent("Contract expired: " + c.Title)
	}
}
