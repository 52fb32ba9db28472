package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"netrunner/pkg/types"
)

// --- Auxiliary Content ---

// ExploitOffer is a purchasable exploit listed on the black market.
type ExploitOffer struct {
	Name          string
	Type          types.ExploitType
	Cost          int
	Effectiveness float64
	LevelReq      int
}

// GenerateContract picks an uncompromised target no more than three
// security levels above the player, falling back to any uncompromised
// node. It reports false when no target exists.
func GenerateContract(r RNG, cat *Catalog, net *Network, level int, factions map[string]*types.Faction, now time.Time) (*types.Contract, bool) {
	suitable := net.Filter(func(n *types.Node) bool {
		return !n.Compromised && n.SecurityRating <= level+3
	})
	if len(suitable) == 0 {
		suitable = net.Filter(func(n *types.Node) bool { return !n.Compromised })
	}
	if len(suitable) == 0 {
		return nil, false
	}

	target := pick(r, suitable)
	objective := pick(r, types.Objectives)
	tpl := cat.Objectives[objective]

	var faction *string
	if len(factions) > 0 && chance(r, 0.3) {
		names := make([]string, 0, len(factions))
		for name := range factions {
			names = append(names, name)
		}
		slices.Sort(names)
		f := pick(r, names)
		faction = &f
	}

	id, err := uuid.NewRandomFromReader(rngReader{r})
	if err != nil {
		return nil, false
	}

	c := &types.Contract{
		UID:              id.String(),
		Title:            fmt.Sprintf(tpl.Title, target.Name),
		Description:      fmt.Sprintf(tpl.Description, target.Name),
		TargetNodeUID:    target.UID,
		Objective:        objective,
		Reward:           int(float64(target.DataValue) * tpl.RewardMult),
		ReputationChange: target.SecurityRating * 5,
		Difficulty:       target.SecurityRating,
		Faction:          faction,
	}
	if chance(r, 0.6) {
		limit := time.Duration(randInt(r, 24, 168)) * time.Hour
		deadline := now.Add(limit)
		secs := types.Seconds(limit)
		c.TimeLimit = &secs
		c.Deadline = &deadline
	}
	c.Contractor = pick(r, cat.Contractors)
	return c, true
}

func GenerateRival(r RNG, cat *Catalog, level int, now time.Time) *types.RivalHacker {
	skill := max(1, level+randInt(r, -2, 3))
	return &types.RivalHacker{
		Name:           pick(r, cat.RivalHandles),
		SkillLevel:     skill,
		Specialization: pick(r, cat.Specializations),
		LastSeen:       now.Add(-time.Duration(randInt(r, 1, 72)) * time.Hour),
	}
}

func GenerateEvent(r RNG, cat *Catalog) types.WorldEvent {
	tpl := pick(r, cat.Events)
	return types.WorldEvent{
		Name:        tpl.Name,
		EType:       tpl.Type,
		Duration:    randRange(r, tpl.Duration),
		Multiplier:  tpl.Multiplier,
		Description: tpl.Description,
	}
}

// HardwareOffers lists every component whose level requirement (cost /
// 2000) is at most two above the player's level.
func HardwareOffers(cat *Catalog, level int) []types.HardwareComponent {
	var out []types.HardwareComponent
	for _, hw := range cat.Hardware {
		req := hw.Cost / 2000
		if req <= level+2 {
			out = append(out, types.HardwareComponent{
				Name:        hw.Name,
				HType:       hw.Type,
				Level:       req,
				Cost:        hw.Cost,
				Bonus:       hw.Bonus,
				Description: hw.Description,
			})
		}
	}
	return out
}

func GenerateExploitOffers(r RNG, cat *Catalog, level int) []ExploitOffer {
	n := randInt(r, 3, 7)
	out := make([]ExploitOffer, 0, n)
	for i := 0; i < n; i++ {
		req := randInt(r, max(1, level-2), level+3)
		out = append(out, ExploitOffer{
			Name:          fmt.Sprintf("%s v%d", pick(r, cat.ExploitNames), randInt(r, 1, 5)),
			Type:          pick(r, types.ExploitTypes),
			Cost:          req * randInt(r, 500, 2000),
			Effectiveness: 0.6 + float64(req)*0.05,
			LevelReq:      req,
		})
	}
	return out
}
