package game

import (
	"fmt"

	"netrunner/pkg/types"
)

// --- Leveling ---

// ExpForLevel is the experience needed to advance past level.
func ExpForLevel(level int) int { return level * ExpPerLevel }

// applyExperience adds exp, rolling over as many levels as it covers. It
// returns the number of levels gained.
func applyExperience(p *types.PlayerState, exp int) int {
	p.Experience += exp
	gained := 0
	for need := ExpForLevel(p.Level); p.Experience >= need; need = ExpForLevel(p.Level) {
		p.Experience -= need
		p.Level++
		gained++
	}
	return gained
}

// grantXP awards experience and queues one skill choice per level gained.
func (g *Game) grantXP(o *Outcome, exp int) {
	if exp <= 0 {
		return
	}
	o.Delta.Experience += exp
	levels := applyExperience(g.Player, exp)
	if levels == 0 {
		return
	}
	g.PendingSkills += levels
	o.LevelsGained += levels
	o.say("LEVEL UP - now level %d", g.Player.Level)
	g.log.Printf("Player %s reached level %d", g.Player.Handle, g.Player.Level)
}

// ChooseSkill spends one pending level-up on skill. A maxed skill is
// refused while any other skill can still grow.
func (g *Game) ChooseSkill(skill types.Skill) (*Outcome, error) {
	if g.PendingSkills == 0 {
		return nil, fmt.Errorf("%w: no level-up pending", ErrInvalidSelection)
	}
	if skill < 0 || int(skill) >= len(types.AllSkills) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, skill)
	}

	o := &Outcome{}
	if !g.Player.Skills.Inc(skill) {
		if !g.allSkillsMaxed() {
			return nil, fmt.Errorf("%w: %s is already at %d", ErrInvalidSelection, skill, types.MaxSkillLevel)
		}
		o.say("Every skill is already maxed")
	} else {
		o.say("%s improved to %d", skill, g.Player.Skills.Get(skill))
	}
	g.PendingSkills--
	return o, nil
}

func (g *Game) allSkillsMaxed() bool {
	for _, s := range types.AllSkills {
		if g.Player.Skills.Get(s) < types.MaxSkillLevel {
			return false
		}
	}
	return true
}
