package game

import (
	"time"

	"netrunner/pkg/types"
)

// --- World Tick ---

// AdvanceTick runs the background world once: rivals, admins, world
// events, the investigation and contract deadlines. The console calls it
// at the top of every main-menu iteration.
func (g *Game) AdvanceTick() *Outcome {
	o := &Outcome{}
	g.Tick++
	g.Player.GameTime = g.Player.GameTime.Add(time.Hour)

	g.tickRivals(o)
	g.tickAdmins()
	g.tickEvents(o)
	g.tickInvestigation(o)
	g.expireContracts()

	if g.session != nil {
		if n, ok := g.Network.Nodes[g.session.NodeID]; ok && n.Compromised {
			g.session = nil
			o.SessionEnded = true
		}
	}
	return o
}

// AddPlaytime accumulates wall-clock time spent in the game.
func (g *Game) AddPlaytime(d time.Duration) {
	g.Player.TotalPlaytime += types.Seconds(d)
}

func (g *Game) tickRivals(o *Outcome) {
	for _, r := range g.Rivals {
		if !chance(g.rng, RivalActivityChance) {
			continue
		}
		targets := g.Network.Filter(func(n *types.Node) bool {
			return !n.Compromised && n.SecurityRating <= r.SkillLevel+2
		})
		if len(targets) == 0 {
			continue
		}
		target := pick(g.rng, targets)
		r.ActiveTargets = append(r.ActiveTargets, target.UID)
		r.LastSeen = g.Player.GameTime

		if chance(g.rng, RivalCompromiseChance) {
			markCompromised(target)
			g.LogEvent("Rival " + r.Name + " compromised " + target.Name)
			if g.Player.DiscoveredNodes.Has(target.UID) {
				o.say("Rival %s compromised %s", r.Name, target.Name)
			}
		}
	}
}

func (g *Game) tickAdmins() {
	for _, n := range g.Network.List() {
		if !n.AdminActive || n.Compromised {
			continue
		}
		for i := range n.Services {
			for j := range n.Services[i].Vulnerabilities {
				if chance(g.rng, AdminPatchChance) {
					n.Services[i].Vulnerabilities[j].PatchLevel++
					g.LogEvent("Admin patched vulnerability at " + n.Name)
				}
			}
		}
		if n.TraceProgress > AdminResponseTrace && chance(g.rng, AdminResponseChance) {
			n.TraceSpeed *= AdminResponseMult
			g.LogEvent("Incident response activated at " + n.Name)
		}
	}
}

func (g *Game) tickEvents(o *Outcome) {
	p := g.Player
	kept := p.ActiveEvents[:0]
	for _, ev := range p.ActiveEvents {
		ev.Duration--
		if ev.Duration <= 0 {
			g.LogEvent("EVENT EXPIRED: " + ev.Name)
			continue
		}
		kept = append(kept, ev)
	}
	p.ActiveEvents = kept

	if len(p.ActiveEvents) < MaxActiveEvents && chance(g.rng, EventTriggerChance) {
		ev := GenerateEvent(g.rng, g.catalog)
		p.ActiveEvents = append(p.ActiveEvents, ev)
		g.LogEvent("NEW WORLD EVENT: " + ev.Name + " - " + ev.Description)
		o.say("[WORLD EVENT] %s: %s", ev.Name, ev.Description)
	}
}

func (g *Game) tickInvestigation(o *Outcome) {
	p := g.Player
	if !p.UnderInvestigation {
		return
	}
	p.InvestigationProgress += uniform(g.rng, InvestigationStepMin, InvestigationStepMax)
	if p.InvestigationProgress >= TraceThreshold {
		g.investigationComplete(o)
	}
}

// investigationComplete seizes the player's assets and closes the case.
func (g *Game) investigationComplete(o *Outcome) {
	p := g.Player
	loss := int(float64(p.Credits) * InvestigationLoss)
	p.Credits -= loss
	p.Reputation = max(0, p.Reputation-InvestigationRepLoss)

	seized := 0
	if len(p.Inventory) > 0 {
		lost := types.NewSet[int]()
		for _, i := range sample(g.rng, indexes(len(p.Inventory)), InvestigationToolLoss) {
			lost.Add(i)
		}
		kept := p.Inventory[:0]
		for i, t := range p.Inventory {
			if !lost.Has(i) {
				kept = append(kept, t)
			}
		}
		seized = lost.Len()
		p.Inventory = kept
	}
	p.Botnets = nil

	p.UnderInvestigation = false
	p.InvestigationProgress = 0
	p.HeatLevel = InvestigationHeat

	o.say("INVESTIGATION COMPLETE - IDENTITY COMPROMISED")
	o.say("Assets seized: %s", credits(loss))
	o.say("Reputation lost: %d", InvestigationRepLoss)
	o.say("Tools confiscated: %d", seized)
	o.say("All botnets destroyed")
	g.LogEvent("IDENTITY COMPROMISED - Major assets lost")
	g.log.Printf("Investigation complete for %s: lost %d credits, %d tools", p.Handle, loss, seized)
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
