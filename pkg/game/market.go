package game

import (
	"fmt"
	"slices"

	"netrunner/pkg/types"
)

// --- Black Market ---

func (g *Game) afford(cost int) error {
	if g.Player.Credits < cost {
		return reject(ReasonInsufficientCredits, "need %s, have %s", credits(cost), credits(g.Player.Credits))
	}
	return nil
}

func (g *Game) levelFor(req int) error {
	if req > g.Player.Level {
		return reject(ReasonInsufficientLevel, "requires level %d", req)
	}
	return nil
}

func (g *Game) BuyTool(index int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(g.MarketTools) {
		return nil, fmt.Errorf("%w: tool %d", ErrInvalidSelection, index)
	}
	t := g.MarketTools[index]
	if g.Player.OwnsTool(t.Name) {
		return nil, reject(ReasonAlreadyOwned, "you already own %s", t.Name)
	}
	if err := g.levelFor(t.LevelRequirement); err != nil {
		return nil, err
	}
	if err := g.afford(t.Cost); err != nil {
		return nil, err
	}

	o, done := g.begin(nil)
	g.Player.Credits -= t.Cost
	g.Player.Inventory = append(g.Player.Inventory, t)
	o.say("Purchased %s for %s", t.Name, credits(t.Cost))
	return done(), nil
}

// BrowseExploits returns the current exploit listings, occasionally
// restocking them first.
func (g *Game) BrowseExploits() []ExploitOffer {
	if chance(g.rng, 0.3) {
		g.MarketExploits = GenerateExploitOffers(g.rng, g.catalog, g.Player.Level)
	}
	return g.MarketExploits
}

func (g *Game) BuyExploit(index int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(g.MarketExploits) {
		return nil, fmt.Errorf("%w: exploit %d", ErrInvalidSelection, index)
	}
	x := g.MarketExploits[index]
	if g.Player.KnownExploits.Has(x.Name) {
		return nil, reject(ReasonAlreadyOwned, "you already know %s", x.Name)
	}
	if err := g.levelFor(x.LevelReq); err != nil {
		return nil, err
	}
	if err := g.afford(x.Cost); err != nil {
		return nil, err
	}

	o, done := g.begin(nil)
	g.Player.Credits -= x.Cost
	g.Player.KnownExploits.Add(x.Name)
	o.say("Acquired %s for %s", x.Name, credits(x.Cost))
	return done(), nil
}

func (g *Game) MarketHardware() []types.HardwareComponent {
	return HardwareOffers(g.catalog, g.Player.Level)
}

// BuyHardware installs a component, replacing whatever sat in its slot.
func (g *Game) BuyHardware(index int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	offers := g.MarketHardware()
	if index < 0 || index >= len(offers) {
		return nil, fmt.Errorf("%w: hardware %d", ErrInvalidSelection, index)
	}
	hw := offers[index]
	slot := hw.HType.Slot()
	if cur, ok := g.Player.Hardware[slot]; ok && cur.Name == hw.Name {
		return nil, reject(ReasonAlreadyOwned, "%s is already installed", hw.Name)
	}
	if err := g.levelFor(hw.Level); err != nil {
		return nil, err
	}
	if err := g.afford(hw.Cost); err != nil {
		return nil, err
	}

	o, done := g.begin(nil)
	g.Player.Credits -= hw.Cost
	g.Player.Hardware[slot] = hw
	o.say("Installed %s in %s slot", hw.Name, slot)
	return done(), nil
}

func (g *Game) BuyProxy() (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	cost := ProxyCost(g.Player)
	if err := g.afford(cost); err != nil {
		return nil, err
	}

	o, done := g.begin(nil)
	g.Player.Credits -= cost
	g.Player.ProxyChains++
	o.say("Proxy chain established. Active chains: %d", g.Player.ProxyChains)
	return done(), nil
}

// Launder cleans money to lower identity exposure and slow an open
// investigation.
func (g *Game) Launder() (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if err := g.afford(LaunderCost); err != nil {
		return nil, err
	}

	p := g.Player
	o, done := g.begin(nil)
	p.Credits -= LaunderCost
	p.IdentityHeat = max(0, p.IdentityHeat-LaunderIdentityReduction)
	p.InvestigationProgress = max(0, p.InvestigationProgress-LaunderInvestigationReduce)
	o.say("Funds laundered. Identity heat: %d%%", p.IdentityHeat)
	return done(), nil
}

// SellData sells the stolen data of a compromised node.
func (g *Game) SellData(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}
	p := g.Player
	if !p.CompromisedNodes.Has(uid) {
		return nil, reject(ReasonNotCompromised, "%s is not compromised", node.Name)
	}
	if node.DataValue <= 0 {
		return nil, reject(ReasonNoTargets, "data from %s already sold", node.Name)
	}

	o, done := g.begin(node)
	value := node.DataValue
	p.Credits += value
	node.DataValue = 0
	p.Reputation += SellDataRep
	p.HeatLevel += SellDataHeat
	o.say("Sold data from %s for %s", node.Name, credits(value))
	return done(), nil
}

// --- Botnets ---

func (g *Game) botnet(index int) (*types.Botnet, error) {
	if len(g.Player.Botnets) == 0 {
		return nil, reject(ReasonNoBotnets, "no botnets available")
	}
	if index < 0 || index >= len(g.Player.Botnets) {
		return nil, fmt.Errorf("%w: botnet %d", ErrInvalidSelection, index)
	}
	return &g.Player.Botnets[index], nil
}

func (g *Game) BuildBotnet() (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if err := g.afford(BotnetCost); err != nil {
		return nil, err
	}

	p := g.Player
	o, done := g.begin(nil)
	skill := p.Skills.BotnetManagement
	size := randInt(g.rng, BotnetSizeMin, BotnetSizeMax) + skill*BotnetSizePerSkill
	quality := BotnetBaseQuality + float64(skill)*BotnetQualityPerSkill
	b := types.Botnet{
		Size:            size,
		Quality:         quality,
		MaintenanceCost: size * 2,
		DDoSPower:       ddosPower(size, quality),
	}
	p.Botnets = append(p.Botnets, b)
	p.Credits -= BotnetCost
	o.say("Botnet created! Size: %d nodes, DDoS Power: %d", b.Size, b.DDoSPower)
	return done(), nil
}

func (g *Game) MaintainBotnet(index int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	b, err := g.botnet(index)
	if err != nil {
		return nil, err
	}
	if err := g.afford(b.MaintenanceCost); err != nil {
		return nil, err
	}

	o, done := g.begin(nil)
	g.Player.Credits -= b.MaintenanceCost
	b.DetectedNodes = max(0, b.DetectedNodes-int(float64(b.Size)*0.3))
	b.Quality = min(1.0, b.Quality+0.05)
	o.say("Botnet health restored. Quality: %.2f", b.Quality)
	return done(), nil
}

func (g *Game) ExpandBotnet(index int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	b, err := g.botnet(index)
	if err != nil {
		return nil, err
	}
	cost := ExpansionCost(*b)
	if err := g.afford(cost); err != nil {
		return nil, err
	}

	o, done := g.begin(nil)
	added := randInt(g.rng, 20, 50) + g.Player.Skills.BotnetManagement*5
	b.Size += added
	b.DDoSPower = ddosPower(b.Size, b.Quality)
	b.MaintenanceCost = b.Size * 2
	g.Player.Credits -= cost
	o.say("Added %d nodes to botnet. New size: %d", added, b.Size)
	return done(), nil
}

func (g *Game) DismantleBotnet(index int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if _, err := g.botnet(index); err != nil {
		return nil, err
	}
	g.Player.Botnets = slices.Delete(g.Player.Botnets, index, index+1)
	o := &Outcome{}
	o.say("Botnet dismantled")
	return o, nil
}

// --- Rivals ---

// HackRival raids a rival's wallet. Either way the rival turns hostile.
func (g *Game) HackRival(index int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(g.Rivals) {
		return nil, fmt.Errorf("%w: rival %d", ErrInvalidSelection, index)
	}
	r := g.Rivals[index]
	p := g.Player

	o, done := g.begin(nil)
	if chance(g.rng, RivalHackChance(p, r)) {
		reward := r.SkillLevel * RivalRewardPerSkill
		p.Credits += reward
		o.say("Infiltration successful! Stole encrypted wallet: %s", credits(reward))
	} else {
		p.HeatLevel += RivalHackFailHeat
		o.say("Detected! %s is counter-attacking...", r.Name)
	}
	r.Hostile = true
	g.LogEvent("Hacked rival " + r.Name)
	return done(), nil
}
