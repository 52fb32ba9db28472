package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netrunner/pkg/types"
)

// fixedRNG returns the same float on every draw and always the first
// index. f=0 makes every chance succeed, f close to 1 makes them fail.
type fixedRNG struct{ f float64 }

func (r fixedRNG) Float64() float64 { return r.f }
func (r fixedRNG) IntN(int) int     { return 0 }

var (
	alwaysHit  = fixedRNG{0}
	alwaysMiss = fixedRNG{0.999}
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestGame(t *testing.T) (*Game, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2031, 3, 14, 9, 0, 0, 0, time.UTC)}
	g := NewGame(Options{Seed: 42, Handle: "tester", Clock: clk.Now})
	require.NotNil(t, g.Player)
	return g, clk
}

const targetVuln = "target_0_SQL Injection"

// addTarget puts a scanned node and one neighbour into the arena.
func addTarget(g *Game, firewall int, severity float64) *types.Node {
	n := &types.Node{
		UID:              "target",
		Name:             "Target Corp",
		SecurityRating:   5,
		FirewallStrength: firewall,
		MaxFirewall:      max(firewall, 1),
		TraceSpeed:       2,
		DataValue:        1000,
		Connections:      []string{"neighbour"},
		Services: []types.Service{{
			Name:  "HTTP",
			Port:  80,
			State: types.StateOpen,
			Vulnerabilities: []types.Vulnerability{{
				Name:                "SQL Injection",
				ExploitType:         types.ExploitSQLInjection,
				Severity:            severity,
				DiscoveryDifficulty: 0.3,
				FirewallDamage:      types.Range{Min: 20, Max: 20},
				TraceCost:           8,
				SuccessRateBase:     0.65,
			}},
		}},
	}
	n.Normalize()
	n.DiscoveredServices.Add(0)
	n.DiscoveredVulns.Add(types.VulnID(n.UID, 0, "SQL Injection"))
	g.Network.add(n)

	nb := &types.Node{UID: "neighbour", Name: "Neighbour", FirewallStrength: 100, MaxFirewall: 100, Connections: []string{"target"}}
	nb.Normalize()
	g.Network.add(nb)

	g.Player.DiscoveredNodes.Add(n.UID)
	return n
}

func requireReason(t *testing.T, err error, want Reason) {
	t.Helper()
	rj, ok := IsRejected(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, want, rj.Reason)
}

// --- Generation ---

func TestGenerateNetworkInvariants(t *testing.T) {
	cat := DefaultCatalog()
	net := GenerateNetwork(1337, NewRand(1337), cat)

	lo, hi := 0, 0
	for _, q := range cat.Quotas {
		lo += q.Count.Min
		hi += q.Count.Max
	}
	require.GreaterOrEqual(t, net.Len(), lo)
	require.LessOrEqual(t, net.Len(), hi)

	for _, n := range net.List() {
		assert.Greater(t, n.MaxFirewall, 0, n.UID)
		assert.GreaterOrEqual(t, n.FirewallStrength, 0, n.UID)
		assert.LessOrEqual(t, n.FirewallStrength, n.MaxFirewall, n.UID)
		assert.False(t, n.Compromised)
		assert.GreaterOrEqual(t, n.ICELevel, max(1, n.SecurityRating-2))
		assert.LessOrEqual(t, n.ICELevel, max(1, n.SecurityRating))
		assert.Equal(t, types.Segments[min(2, n.SecurityRating/4)], n.NetworkSegment)
		assert.InDelta(t, 0.5+float64(n.SecurityRating)*0.3, n.TraceSpeed, 1e-9)

		assert.GreaterOrEqual(t, len(n.Services), 3)
		assert.LessOrEqual(t, len(n.Services), 8)
		assert.GreaterOrEqual(t, len(n.Employees), 5)
		assert.LessOrEqual(t, len(n.Employees), 30)

		if n.SecurityRating < HoneypotMinSecurity {
			assert.Empty(t, n.Honeypots, n.UID)
		} else {
			assert.NotEmpty(t, n.Honeypots, n.UID)
		}

		for _, s := range n.Services {
			names := map[string]bool{}
			for _, v := range s.Vulnerabilities {
				assert.False(t, names[v.Name], "duplicate vulnerability %s", v.Name)
				names[v.Name] = true
			}
			if s.State == types.StateOpen {
				assert.GreaterOrEqual(t, len(s.Vulnerabilities), 1)
			}
		}

		for _, c := range n.Connections {
			assert.NotEqual(t, n.UID, c, "self loop")
			peer, err := net.Node(c)
			require.NoError(t, err)
			assert.True(t, peer.ConnectedTo(n.UID), "edge %s-%s is not symmetric", n.UID, c)
		}
	}
}

func TestGenerateNetworkDeterministic(t *testing.T) {
	cat := DefaultCatalog()
	a := GenerateNetwork(99, NewRand(99), cat)
	b := GenerateNetwork(99, NewRand(99), cat)
	assert.Equal(t, a, b)

	c := GenerateNetwork(100, NewRand(100), cat)
	assert.NotEqual(t, a.Order, c.Order)
}

func TestEmployeeEmails(t *testing.T) {
	assert.Equal(t, "quantumdynamics.com", EmailDomain("Quantum Dynamics"))
	assert.Equal(t, "internationalbu.com", EmailDomain("International Business Systems"))

	emps := GenerateEmployees(NewRand(5), DefaultCatalog(), 10, "Quantum Dynamics")
	require.Len(t, emps, 10)
	for _, e := range emps {
		assert.Contains(t, e.Email, "@quantumdynamics.com")
	}
}

func TestNewGameStartsOnLowSecurityNode(t *testing.T) {
	g, _ := newTestGame(t)
	start := g.CurrentNode()
	require.NotNil(t, start)
	assert.LessOrEqual(t, start.SecurityRating, 2)
	assert.True(t, g.Player.DiscoveredNodes.Has(start.UID))
	assert.Equal(t, StartingCredits, g.Player.Credits)
	assert.Len(t, g.Player.Hardware, 4)
	assert.Len(t, g.Player.Factions, len(g.catalog.Factions))
	assert.NotEmpty(t, g.Contracts)
	assert.GreaterOrEqual(t, len(g.Rivals), 3)
}

// --- Formulas ---

func TestSuccessRateScenario(t *testing.T) {
	p := &types.PlayerState{Skills: types.StartingSkills()}
	p.Skills.Exploitation = 3
	v := types.Vulnerability{SuccessRateBase: 0.65, PatchLevel: 2}
	assert.InDelta(t, 0.74, SuccessRate(p, v), 1e-9)
}

func TestSuccessRateClampedAndMonotonic(t *testing.T) {
	p := &types.PlayerState{Skills: types.StartingSkills()}
	assert.Equal(t, MinSuccessRate, SuccessRate(p, types.Vulnerability{SuccessRateBase: 0.5, PatchLevel: 100}))

	p.Skills.Exploitation = 10
	p.Inventory = []types.Tool{{ToolType: types.ToolExploitFramework, Effectiveness: 5}}
	assert.Equal(t, MaxSuccessRate, SuccessRate(p, types.Vulnerability{SuccessRateBase: 0.9}))

	v := types.Vulnerability{SuccessRateBase: 0.3, PatchLevel: 1}
	prev := 0.0
	for skill := 1; skill <= types.MaxSkillLevel; skill++ {
		q := &types.PlayerState{Skills: types.Skills{Exploitation: skill}}
		for eff := 0.0; eff <= 2; eff += 0.5 {
			q.Inventory = []types.Tool{{ToolType: types.ToolExploitFramework, Effectiveness: eff}}
			r := SuccessRate(q, v)
			assert.GreaterOrEqual(t, r, MinSuccessRate)
			assert.LessOrEqual(t, r, MaxSuccessRate)
			if eff == 0 {
				assert.GreaterOrEqual(t, r, prev, "skill %d", skill)
				prev = r
			}
		}
	}
}

func TestSuccessRateEvents(t *testing.T) {
	p := &types.PlayerState{Skills: types.StartingSkills()}
	v := types.Vulnerability{SuccessRateBase: 0.5}
	base := SuccessRate(p, v)
	p.ActiveEvents = []types.WorldEvent{{EType: types.EventGlobalPatch, Multiplier: 0.7}}
	assert.Less(t, SuccessRate(p, v), base)
	p.ActiveEvents = []types.WorldEvent{{EType: types.EventZeroDayLeak, Multiplier: 1.3}}
	assert.Greater(t, SuccessRate(p, v), base)
}

func TestStealthDiscountCapped(t *testing.T) {
	p := &types.PlayerState{Skills: types.Skills{Stealth: 10}, ProxyChains: 20}
	p.BouncedNodes = make([]string, 15)
	assert.Equal(t, MaxStealth, StealthDiscount(p))

	p = &types.PlayerState{Skills: types.Skills{Stealth: 2}, ProxyChains: 1, BouncedNodes: []string{"a"}}
	assert.InDelta(t, 0.1+0.1+0.12, StealthDiscount(p), 1e-9)
}

func TestTraceIncrease(t *testing.T) {
	p := &types.PlayerState{Skills: types.Skills{Stealth: 0}}
	n := &types.Node{TraceSpeed: 2}
	assert.InDelta(t, 2.0, TraceIncrease(p, n), 1e-9)

	n.HasSIEM = true
	assert.InDelta(t, 3.0, TraceIncrease(p, n), 1e-9)

	p.Hardware = map[string]types.HardwareComponent{types.SlotCooling: {Bonus: 1.5}}
	p.ActiveEvents = []types.WorldEvent{{EType: types.EventPoliceCrackdown, Multiplier: 1.5}}
	assert.InDelta(t, 3.0, TraceIncrease(p, n), 1e-9)
}

func TestChallengeTimeoutScalesWithRAM(t *testing.T) {
	p := &types.PlayerState{}
	assert.Equal(t, 8500*time.Millisecond, ChallengeTimeout(p, 0.3))
	p.Hardware = map[string]types.HardwareComponent{types.SlotRAM: {Bonus: 2}}
	assert.Equal(t, 17*time.Second, ChallengeTimeout(p, 0.3))
}

// --- Leveling ---

func TestLevelUpAcrossSeveralThresholds(t *testing.T) {
	g, _ := newTestGame(t)
	o := &Outcome{}
	g.grantXP(o, 100+200+50)

	assert.Equal(t, 3, g.Player.Level)
	assert.Equal(t, 50, g.Player.Experience)
	assert.Equal(t, 2, g.PendingSkills)
	assert.Equal(t, 2, o.LevelsGained)

	_, err := g.Scan(g.Player.CurrentLocation)
	requireReason(t, err, ReasonSkillChoicePending)

	_, err = g.ChooseSkill(types.SkillStealth)
	require.NoError(t, err)
	_, err = g.ChooseSkill(types.SkillStealth)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Player.Skills.Stealth)
	assert.Zero(t, g.PendingSkills)

	_, err = g.ChooseSkill(types.SkillStealth)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestChooseSkillRefusesMaxedSkill(t *testing.T) {
	g, _ := newTestGame(t)
	g.PendingSkills = 1
	g.Player.Skills.Scanning = types.MaxSkillLevel

	_, err := g.ChooseSkill(types.SkillScanning)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, 1, g.PendingSkills)

	_, err = g.ChooseSkill(types.SkillScanning + 1)
	require.NoError(t, err)
	assert.Zero(t, g.PendingSkills)
}

// --- Resolver ---

func TestExploitCompromisesNode(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 10, 0.5)
	g.rng = alwaysHit
	credits := g.Player.Credits

	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)
	o, err := g.Exploit(targetVuln)
	require.NoError(t, err)

	assert.True(t, o.Compromised)
	assert.True(t, o.SessionEnded)
	assert.Nil(t, g.Session())
	assert.True(t, n.Compromised)
	assert.Equal(t, 0, n.FirewallStrength)
	assert.NotNil(t, n.LastAttackTime)
	assert.True(t, g.Player.CompromisedNodes.Has(n.UID))
	assert.True(t, g.Player.DiscoveredNodes.Has("neighbour"))
	assert.True(t, g.Player.CompromisedNodes.SubsetOf(g.Player.DiscoveredNodes))
	assert.Equal(t, credits+1000, g.Player.Credits)
	assert.Equal(t, 1000, o.Delta.Credits)
	assert.Equal(t, 50, g.Player.Reputation)
	assert.Equal(t, 255, o.Delta.Experience)
	assert.Equal(t, 1, g.PendingSkills)

	_, err = g.ChooseSkill(types.SkillExploitation)
	require.NoError(t, err)
	_, err = g.StartAttack(n.UID)
	requireReason(t, err, ReasonAlreadyCompromised)
}

func TestExploitDamageAndTraceAccrual(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	g.rng = alwaysHit

	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)
	o, err := g.Exploit(targetVuln)
	require.NoError(t, err)

	assert.Equal(t, 500-22, n.FirewallStrength)
	assert.Equal(t, -22, o.Delta.Firewall)
	assert.InDelta(t, 2*(1-0.05), n.TraceProgress, 1e-9)
	assert.False(t, o.Compromised)
	assert.NotNil(t, g.Session())
}

func TestFailedExploitAddsTraceCost(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.AdminActive = true
	g.rng = alwaysHit
	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)

	g.rng = alwaysMiss
	_, err = g.Exploit(targetVuln)
	require.NoError(t, err)
	assert.Equal(t, 500, n.FirewallStrength)
	assert.InDelta(t, 8+2*(1-0.05), n.TraceProgress, 1e-9)
	assert.Equal(t, 0, n.Services[0].Vulnerabilities[0].PatchLevel)
}

func TestTraceCompleteFiresOnCrossing(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.TraceProgress = 95
	g.rng = alwaysHit
	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)

	g.rng = alwaysMiss
	heat, identity, credits := g.Player.HeatLevel, g.Player.IdentityHeat, g.Player.Credits
	o, err := g.Exploit(targetVuln)
	require.NoError(t, err)

	assert.True(t, o.Traced)
	assert.True(t, o.SessionEnded)
	assert.Equal(t, heat+TraceHeat, g.Player.HeatLevel)
	assert.Equal(t, identity+TraceIdentityHeat, g.Player.IdentityHeat)
	assert.Equal(t, credits-TracePenaltyMin, g.Player.Credits)
	assert.False(t, g.Player.UnderInvestigation)
	assert.Contains(t, g.EventLog[len(g.EventLog)-1], "TRACED at Target Corp")

	_, err = g.StartAttack(n.UID)
	requireReason(t, err, ReasonTraced)

	// Further trace on an already traced node does not fire again.
	n.Employees = []types.Employee{{Name: "Bo Reyes"}}
	o, err = g.Phish(n.UID)
	require.NoError(t, err)
	assert.False(t, o.Traced)
	assert.Greater(t, n.TraceProgress, 100.0)
}

// Trace completion is resolved after every action that touches a node,
// not only inside an attack session.
func TestTraceCompleteFiresOutsideSession(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.Employees = []types.Employee{{Name: "Ada Lane", AccessLevel: 2, PhishingSusceptibility: 0.5}}
	n.TraceProgress = TraceThreshold - 1
	g.rng = alwaysMiss
	require.Nil(t, g.Session())

	heat, credits := g.Player.HeatLevel, g.Player.Credits
	o, err := g.Phish(n.UID)
	require.NoError(t, err)

	assert.True(t, o.Traced)
	assert.False(t, o.SessionEnded)
	assert.False(t, n.Compromised)
	assert.Equal(t, heat+PhishingFailHeat+TraceHeat, g.Player.HeatLevel)
	assert.Equal(t, credits-TracePenaltyMin, g.Player.Credits)
	assert.Contains(t, g.EventLog[len(g.EventLog)-1], "TRACED at Target Corp")

	_, err = g.StartAttack(n.UID)
	requireReason(t, err, ReasonTraced)
}

func TestTraceCompleteCanOpenInvestigation(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.TraceProgress = 99
	g.Player.IdentityHeat = InvestigationTrigger
	g.rng = alwaysHit

	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)
	o, err := g.Exploit(targetVuln)
	require.NoError(t, err)
	assert.True(t, o.Traced)
	assert.True(t, g.Player.UnderInvestigation)
}

func TestCriticalExploitRequiresChallenge(t *testing.T) {
	g, clk := newTestGame(t)
	n := addTarget(g, 500, 0.9)
	g.rng = alwaysHit

	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)
	o, err := g.Exploit(targetVuln)
	require.NoError(t, err)
	require.NotNil(t, o.Challenge)
	assert.Equal(t, "10 + 10 = ?", o.Challenge.Prompt())
	assert.Equal(t, 500, n.FirewallStrength)

	_, err = g.Exploit(targetVuln)
	requireReason(t, err, ReasonChallengePending)

	clk.t = clk.t.Add(2 * time.Second)
	o, err = g.AnswerChallenge(" 20 ")
	require.NoError(t, err)
	assert.Equal(t, 478, n.FirewallStrength)
	assert.Nil(t, g.Session().Pending)
	assert.Contains(t, o.Lines, "ACCESS GRANTED")
}

func TestChallengeTimeoutFailsBypass(t *testing.T) {
	g, clk := newTestGame(t)
	n := addTarget(g, 500, 0.9)
	g.rng = alwaysHit

	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)
	o, err := g.Exploit(targetVuln)
	require.NoError(t, err)

	clk.t = clk.t.Add(o.Challenge.Timeout + time.Second)
	o, err = g.AnswerChallenge("20")
	require.NoError(t, err)
	assert.Equal(t, 500, n.FirewallStrength)
	assert.InDelta(t, ChallengeTrace+2*(1-0.05), n.TraceProgress, 1e-9)
	assert.Contains(t, o.Lines, "TIMEOUT - Bypass failed")

	_, err = g.AnswerChallenge("20")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestWrongChallengeAnswerFails(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.9)
	g.rng = alwaysHit
	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)
	_, err = g.Exploit(targetVuln)
	require.NoError(t, err)

	o, err := g.AnswerChallenge("nineteen")
	require.NoError(t, err)
	assert.Equal(t, 500, n.FirewallStrength)
	assert.Contains(t, o.Lines, "INCORRECT CODE")
}

func TestStartAttackNeedsScanData(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.DiscoveredVulns = types.NewSet[string]()
	_, err := g.StartAttack(n.UID)
	requireReason(t, err, ReasonNoScanData)
	assert.Nil(t, g.Session())
}

func TestMissingToolRejected(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.Services[0].Vulnerabilities[0].RequiresTool = string(types.ToolExploitFramework)
	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)

	_, err = g.Exploit(targetVuln)
	requireReason(t, err, ReasonMissingTool)
	assert.Zero(t, n.TraceProgress)
}

func TestUnknownNodes(t *testing.T) {
	g, _ := newTestGame(t)
	_, err := g.Scan("does-not-exist")
	assert.ErrorIs(t, err, ErrUnknownNode)

	for _, n := range g.Network.List() {
		if !g.Player.DiscoveredNodes.Has(n.UID) {
			_, err = g.Scan(n.UID)
			assert.ErrorIs(t, err, ErrUnknownNode)
			break
		}
	}

	_, err = g.Exploit("whatever")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = g.AbortAttack()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUnknownVulnerability(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)
	_, err = g.Exploit("target_0_Nope")
	assert.ErrorIs(t, err, ErrUnknownVulnerability)
}

func TestScanGrantsExperienceAndRevealsServices(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.DiscoveredServices = types.NewSet[int]()
	n.DiscoveredVulns = types.NewSet[string]()
	n.Honeypots = []types.Honeypot{{Port: 2222, DetectionChance: 0.8, TraceIncrease: 30}}
	g.rng = alwaysHit

	o, err := g.Scan(n.UID)
	require.NoError(t, err)
	assert.True(t, n.DiscoveredServices.Has(0))
	assert.True(t, n.DiscoveredVulns.Has(targetVuln))
	assert.Equal(t, 25, o.Delta.Experience)
	assert.InDelta(t, 30, n.TraceProgress, 1e-9)
	assert.Equal(t, HoneypotHeat, o.Delta.Heat)
}

func TestClearTracesFloorsAtZero(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.TraceProgress = 10
	_, err := g.ClearTraces(n.UID)
	require.NoError(t, err)
	assert.Zero(t, n.TraceProgress)
}

func TestAbortKeepsAccruedTrace(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	g.rng = alwaysMiss
	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)
	_, err = g.Exploit(targetVuln)
	require.NoError(t, err)
	trace := n.TraceProgress

	o, err := g.AbortAttack()
	require.NoError(t, err)
	assert.True(t, o.SessionEnded)
	assert.Nil(t, g.Session())
	assert.Equal(t, trace, n.TraceProgress)
}

func TestBackdoor(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)

	_, err := g.InstallBackdoor(n.UID)
	requireReason(t, err, ReasonNotCompromised)

	markCompromised(n)
	g.Player.CompromisedNodes.Add(n.UID)
	g.rng = alwaysMiss
	_, err = g.InstallBackdoor(n.UID)
	require.NoError(t, err)
	assert.False(t, n.BackdoorInstalled)
	assert.InDelta(t, BackdoorFailTrace, n.TraceProgress, 1e-9)

	g.rng = alwaysHit
	_, err = g.InstallBackdoor(n.UID)
	require.NoError(t, err)
	assert.True(t, n.BackdoorInstalled)
	_, err = g.ChooseSkill(types.SkillReverseEngineering)
	require.NoError(t, err)

	_, err = g.InstallBackdoor(n.UID)
	requireReason(t, err, ReasonAlreadyInstalled)
}

func TestDDoS(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	_, err := g.StartAttack(n.UID)
	require.NoError(t, err)

	_, err = g.DDoS(0)
	requireReason(t, err, ReasonNoBotnets)

	g.Player.Botnets = []types.Botnet{{Size: 100, Quality: 0.5, DDoSPower: 100}}
	g.rng = alwaysMiss
	o, err := g.DDoS(0)
	require.NoError(t, err)
	assert.Equal(t, 450, n.FirewallStrength)
	assert.Equal(t, DDoSHeat, o.Delta.Heat)
	assert.Equal(t, DDoSExp, o.Delta.Experience)
	assert.InDelta(t, DDoSTrace+2*(1-0.05), n.TraceProgress, 1e-9)
}

// --- Social ---

func TestPhishingCompromisesEmployee(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 50, 0.5)
	n.Employees = []types.Employee{{Name: "Ada Lane", AccessLevel: 2, PhishingSusceptibility: 0.5}}
	g.rng = alwaysHit

	_, err := g.Phish(n.UID)
	require.NoError(t, err)
	assert.True(t, n.Employees[0].Compromised)
	assert.Equal(t, 0, n.FirewallStrength)
	assert.True(t, n.Compromised, "phishing that drops the firewall compromises the node")
	_, err = g.ChooseSkill(types.SkillSocialEngineering)
	require.NoError(t, err)

	_, err = g.Phish(n.UID)
	requireReason(t, err, ReasonNoTargets)
}

func TestUseCredentials(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.Employees = []types.Employee{{Name: "Ada Lane", AccessLevel: 3}}

	_, err := g.UseCredentials(n.UID, 0)
	requireReason(t, err, ReasonNotCompromised)
	_, err = g.UseCredentials(n.UID, 5)
	assert.ErrorIs(t, err, ErrInvalidSelection)

	n.Employees[0].Compromised = true
	_, err = g.UseCredentials(n.UID, 0)
	require.NoError(t, err)
	assert.Equal(t, 425, n.FirewallStrength)
	assert.InDelta(t, 1.6, n.TraceSpeed, 1e-9)
}

func TestCrack(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.EncryptedTraffic = []types.EncryptedData{{EncryptionType: types.EncryptionAES128, Value: 700, Difficulty: 0.5}}
	g.rng = alwaysHit
	credits := g.Player.Credits

	o, err := g.Crack(n.UID, 0)
	require.NoError(t, err)
	assert.True(t, n.EncryptedTraffic[0].Cracked)
	assert.Equal(t, credits+700, g.Player.Credits)
	assert.Equal(t, 25, o.Delta.Experience)

	_, err = g.Crack(n.UID, 0)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

// --- Market, contracts, rivals ---

func TestRejectedPurchaseDoesNotMutate(t *testing.T) {
	g, _ := newTestGame(t)
	g.Player.Credits = 10
	g.MarketTools = []types.Tool{{Name: "Scanner", ToolType: types.ToolScanner, Cost: 500, LevelRequirement: 1}}
	before := *g.Player
	inv := len(g.Player.Inventory)

	_, err := g.BuyTool(0)
	requireReason(t, err, ReasonInsufficientCredits)
	_, err = g.BuyProxy()
	requireReason(t, err, ReasonInsufficientCredits)
	_, err = g.Launder()
	requireReason(t, err, ReasonInsufficientCredits)
	_, err = g.BuildBotnet()
	requireReason(t, err, ReasonInsufficientCredits)

	assert.Equal(t, before.Credits, g.Player.Credits)
	assert.Equal(t, before.ProxyChains, g.Player.ProxyChains)
	assert.Len(t, g.Player.Inventory, inv)
	assert.Empty(t, g.Player.Botnets)
}

func TestBuyToolLevelAndOwnership(t *testing.T) {
	g, _ := newTestGame(t)
	g.Player.Credits = 1_000_000
	g.MarketTools = []types.Tool{
		{Name: "Scanner", ToolType: types.ToolScanner, Cost: 500, LevelRequirement: 1},
		{Name: "Zero", ToolType: types.ToolExploitFramework, Cost: 500, LevelRequirement: 9},
	}

	_, err := g.BuyTool(1)
	requireReason(t, err, ReasonInsufficientLevel)

	o, err := g.BuyTool(0)
	require.NoError(t, err)
	assert.Equal(t, -500, o.Delta.Credits)
	assert.True(t, g.Player.OwnsTool("Scanner"))

	_, err = g.BuyTool(0)
	requireReason(t, err, ReasonAlreadyOwned)
	_, err = g.BuyTool(7)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestBuyHardwareReplacesSlot(t *testing.T) {
	g, _ := newTestGame(t)
	g.Player.Credits = 1_000_000
	g.Player.Level = 10
	offers := g.MarketHardware()
	require.NotEmpty(t, offers)
	hw := offers[0]

	_, err := g.BuyHardware(0)
	require.NoError(t, err)
	assert.Equal(t, hw, g.Player.Hardware[hw.HType.Slot()])
	_, err = g.BuyHardware(0)
	requireReason(t, err, ReasonAlreadyOwned)
}

func TestSellAndLaunder(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)

	_, err := g.SellData(n.UID)
	requireReason(t, err, ReasonNotCompromised)

	markCompromised(n)
	g.Player.CompromisedNodes.Add(n.UID)
	o, err := g.SellData(n.UID)
	require.NoError(t, err)
	assert.Equal(t, 1000, o.Delta.Credits)
	assert.Equal(t, SellDataHeat, o.Delta.Heat)
	assert.Zero(t, n.DataValue)

	_, err = g.SellData(n.UID)
	requireReason(t, err, ReasonNoTargets)

	g.Player.IdentityHeat = 10
	g.Player.InvestigationProgress = 3
	_, err = g.Launder()
	require.NoError(t, err)
	assert.Zero(t, g.Player.IdentityHeat)
	assert.Zero(t, g.Player.InvestigationProgress)
}

func TestBotnetLifecycle(t *testing.T) {
	g, _ := newTestGame(t)
	g.Player.Credits = 100_000
	g.rng = alwaysHit

	_, err := g.BuildBotnet()
	require.NoError(t, err)
	require.Len(t, g.Player.Botnets, 1)
	b := g.Player.Botnets[0]
	assert.Equal(t, BotnetSizeMin+BotnetSizePerSkill, b.Size)
	assert.InDelta(t, 0.55, b.Quality, 1e-9)
	assert.Equal(t, 19, b.DDoSPower)
	assert.Equal(t, 140, b.MaintenanceCost)

	_, err = g.ExpandBotnet(0)
	require.NoError(t, err)
	assert.Equal(t, 70+25, g.Player.Botnets[0].Size)

	g.Player.Botnets[0].DetectedNodes = 50
	_, err = g.MaintainBotnet(0)
	require.NoError(t, err)
	assert.Equal(t, 50-28, g.Player.Botnets[0].DetectedNodes)
	assert.InDelta(t, 0.6, g.Player.Botnets[0].Quality, 1e-9)

	_, err = g.DismantleBotnet(0)
	require.NoError(t, err)
	assert.Empty(t, g.Player.Botnets)
	_, err = g.DismantleBotnet(0)
	requireReason(t, err, ReasonNoBotnets)
}

func TestContractCompletesOnCompromise(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 10, 0.5)
	c := &types.Contract{UID: "c-1", Title: "Data Heist", TargetNodeUID: n.UID, Objective: types.ObjectiveStealData, Reward: 5000, ReputationChange: 25}
	recon := &types.Contract{UID: "c-2", TargetNodeUID: n.UID, Objective: types.ObjectiveReconnaissance, Reward: 100}
	g.Contracts = append(g.Contracts, c, recon)

	_, err := g.AcceptContract("c-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1"}, g.Player.ActiveContracts)

	g.rng = alwaysHit
	credits := g.Player.Credits
	_, err = g.StartAttack(n.UID)
	require.NoError(t, err)
	_, err = g.Exploit(targetVuln)
	require.NoError(t, err)

	assert.True(t, c.Completed)
	assert.False(t, recon.Completed)
	assert.True(t, g.Player.CompletedContracts.Has("c-1"))
	assert.Empty(t, g.Player.ActiveContracts)
	assert.Equal(t, credits+1000+5000, g.Player.Credits)
}

func TestAcceptContractDiscoversTargetAndRaisesFaction(t *testing.T) {
	g, _ := newTestGame(t)
	var hidden *types.Node
	for _, n := range g.Network.List() {
		if !g.Player.DiscoveredNodes.Has(n.UID) {
			hidden = n
			break
		}
	}
	require.NotNil(t, hidden)
	faction := "Grey Market Traders"
	g.Contracts = append(g.Contracts, &types.Contract{UID: "c-9", TargetNodeUID: hidden.UID, Faction: &faction})
	rep := g.Player.Factions[faction].Reputation

	_, err := g.AcceptContract("c-9")
	require.NoError(t, err)
	assert.True(t, g.Player.DiscoveredNodes.Has(hidden.UID))
	assert.Equal(t, rep+5, g.Player.Factions[faction].Reputation)

	_, err = g.AcceptContract("nope")
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestContractBoardRefills(t *testing.T) {
	g, _ := newTestGame(t)
	for _, c := range g.Contracts {
		c.Completed = true
	}
	board := g.ContractBoard()
	assert.NotEmpty(t, board)
	for _, c := range board {
		assert.False(t, c.Completed)
	}
}

func TestGenerateContractNoTarget(t *testing.T) {
	net := &Network{Nodes: map[string]*types.Node{}}
	_, ok := GenerateContract(NewRand(1), DefaultCatalog(), net, 1, nil, time.Now())
	assert.False(t, ok)
}

func TestHackRival(t *testing.T) {
	g, _ := newTestGame(t)
	r := g.Rivals[0]
	r.SkillLevel = 2
	g.rng = alwaysHit

	o, err := g.HackRival(0)
	require.NoError(t, err)
	assert.Equal(t, 2*RivalRewardPerSkill, o.Delta.Credits)
	assert.True(t, r.Hostile)

	g.rng = alwaysMiss
	o, err = g.HackRival(0)
	require.NoError(t, err)
	assert.Equal(t, RivalHackFailHeat, o.Delta.Heat)

	_, err = g.HackRival(len(g.Rivals))
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

// --- Navigation ---

func TestNavigationAndBounce(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	g.Player.CurrentLocation = n.UID

	_, err := g.Navigate("neighbour")
	assert.ErrorIs(t, err, ErrUnknownNode)

	g.rng = alwaysHit
	_, err = g.DiscoverNodes()
	require.NoError(t, err)
	assert.True(t, g.Player.DiscoveredNodes.Has("neighbour"))

	_, err = g.Navigate("neighbour")
	require.NoError(t, err)
	assert.Equal(t, "neighbour", g.Player.CurrentLocation)

	_, err = g.AddBounce(n.UID)
	requireReason(t, err, ReasonNotCompromised)
	markCompromised(n)
	g.Player.CompromisedNodes.Add(n.UID)
	_, err = g.AddBounce(n.UID)
	require.NoError(t, err)
	_, err = g.AddBounce(n.UID)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Empty(t, g.BounceCandidates())

	_, err = g.ClearBounce()
	require.NoError(t, err)
	assert.Empty(t, g.Player.BouncedNodes)
}

// --- Tick ---

func TestInvestigationCompletion(t *testing.T) {
	g, _ := newTestGame(t)
	p := g.Player
	p.Credits = 1000
	p.Reputation = 40
	p.HeatLevel = 90
	p.Inventory = append([]types.Tool(nil), g.catalog.Tools[:5]...)
	p.Botnets = []types.Botnet{{Size: 10}, {Size: 20}}
	p.UnderInvestigation = true
	p.InvestigationProgress = 99.9
	g.rng = alwaysMiss

	o := g.AdvanceTick()

	assert.Equal(t, 300, p.Credits)
	assert.Zero(t, p.Reputation)
	assert.Len(t, p.Inventory, 2)
	assert.Nil(t, p.Botnets)
	assert.Equal(t, InvestigationHeat, p.HeatLevel)
	assert.False(t, p.UnderInvestigation)
	assert.Zero(t, p.InvestigationProgress)
	assert.Contains(t, o.Lines, "INVESTIGATION COMPLETE - IDENTITY COMPROMISED")
}

func TestAdvanceTickMovesGameTime(t *testing.T) {
	g, _ := newTestGame(t)
	start := g.Player.GameTime
	g.rng = alwaysMiss
	g.AdvanceTick()
	g.AdvanceTick()
	assert.Equal(t, uint64(2), g.Tick)
	assert.Equal(t, start.Add(2*time.Hour), g.Player.GameTime)
}

func TestRivalCompromiseKeepsFirewallInvariant(t *testing.T) {
	g, _ := newTestGame(t)
	g.rng = alwaysHit
	g.AdvanceTick()

	hit := 0
	for _, n := range g.Network.List() {
		if n.Compromised {
			hit++
			assert.LessOrEqual(t, n.FirewallStrength, 0)
		}
	}
	assert.Positive(t, hit)
	assert.Empty(t, g.Player.CompromisedNodes)
	require.NotEmpty(t, g.Player.ActiveEvents)
}

func TestWorldEventsExpire(t *testing.T) {
	g, _ := newTestGame(t)
	g.Player.ActiveEvents = []types.WorldEvent{{Name: "Short", Duration: 1}, {Name: "Long", Duration: 5}}
	g.rng = alwaysMiss
	g.AdvanceTick()
	require.Len(t, g.Player.ActiveEvents, 1)
	assert.Equal(t, "Long", g.Player.ActiveEvents[0].Name)
	assert.Equal(t, 4, g.Player.ActiveEvents[0].Duration)
}

func TestAdminPatchesDuringTick(t *testing.T) {
	g, _ := newTestGame(t)
	n := addTarget(g, 500, 0.5)
	n.AdminActive = true
	n.TraceProgress = 50
	g.rng = alwaysHit
	g.AdvanceTick()
	if !n.Compromised {
		assert.Equal(t, 1, n.Services[0].Vulnerabilities[0].PatchLevel)
		assert.InDelta(t, 3.0, n.TraceSpeed, 1e-9)
	}
}

func TestContractDeadlineExpires(t *testing.T) {
	g, _ := newTestGame(t)
	deadline := g.Player.GameTime.Add(30 * time.Minute)
	c := &types.Contract{UID: "late", Deadline: &deadline}
	g.Contracts = append(g.Contracts, c)
	g.Player.ActiveContracts = []string{"late"}
	g.rng = alwaysMiss

	g.AdvanceTick()
	assert.True(t, c.Failed)
	assert.Empty(t, g.Player.ActiveContracts)
}

func TestEventLogKeepsRecentLines(t *testing.T) {
	g, _ := newTestGame(t)
	for i := 0; i < EventLogKeep+20; i++ {
		g.LogEvent("line")
	}
	assert.Len(t, g.EventLog, EventLogKeep)
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] line$`, g.EventLog[0])
}

func TestRejectionType(t *testing.T) {
	err := reject(ReasonNoTargets, "nothing here")
	var rj *Rejection
	require.True(t, errors.As(err, &rj))
	assert.Equal(t, "rejected (no_targets): nothing here", err.Error())
}
