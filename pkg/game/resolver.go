package game

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"netrunner/pkg/types"
)

// AttackSession is an open attack against one node. Every action taken
// inside it accrues trace on that node.
type AttackSession struct {
	NodeID  string
	Actions int
	Pending *Challenge
}

// Challenge is the timed bypass puzzle a critical exploit must pass
// before it damages the firewall.
type Challenge struct {
	A, B     int
	Op       string
	Timeout  time.Duration
	IssuedAt time.Time
	VulnID   string
	answer   int
}

func (c *Challenge) Prompt() string {
	return fmt.Sprintf("%d %s %d = ?", c.A, c.Op, c.B)
}

func newChallenge(r RNG, vulnID string, timeout time.Duration, now time.Time) *Challenge {
	c := &Challenge{
		A:        randInt(r, 10, 50),
		B:        randInt(r, 10, 50),
		Op:       pick(r, []string{"+", "-"}),
		Timeout:  timeout,
		IssuedAt: now,
		VulnID:   vulnID,
	}
	if c.Op == "+" {
		c.answer = c.A + c.B
	} else {
		c.answer = c.A - c.B
	}
	return c
}

// DiscoveredVuln is a vulnerability the player has found on a node.
type DiscoveredVuln struct {
	ID           string
	ServiceIndex int
	Service      string
	Vuln         *types.Vulnerability
}

// KnownVulns lists the discovered vulnerabilities of node in service
// order.
func KnownVulns(node *types.Node) []DiscoveredVuln {
	var out []DiscoveredVuln
	for i := range node.Services {
		if !node.DiscoveredServices.Has(i) {
			continue
		}
		svc := &node.Services[i]
		for j := range svc.Vulnerabilities {
			v := &svc.Vulnerabilities[j]
			id := types.VulnID(node.UID, i, v.Name)
			if node.DiscoveredVulns.Has(id) {
				out = append(out, DiscoveredVuln{ID: id, ServiceIndex: i, Service: svc.Name, Vuln: v})
			}
		}
	}
	return out
}

func findVuln(node *types.Node, id string) (*types.Vulnerability, error) {
	for _, dv := range KnownVulns(node) {
		if dv.ID == id {
			return dv.Vuln, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVulnerability, id)
}

// --- Reconnaissance ---

// Scan probes a node's services. Honeypots are checked first.
func (g *Game) Scan(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}

	p := g.Player
	o, done := g.begin(node)
	startTrace := node.TraceProgress
	o.say("Initiating port scan on %s...", node.IPAddress)

	for _, hp := range node.Honeypots {
		if chance(g.rng, HoneypotChance(p, hp)) {
			node.TraceProgress += float64(hp.TraceIncrease)
			p.HeatLevel += HoneypotHeat
			o.say("[WARNING] Honeypot detected on port %d", hp.Port)
		}
	}

	disc := DiscoveryChance(p)
	for i := range node.Services {
		svc := &node.Services[i]
		if !chance(g.rng, disc) && !node.DiscoveredServices.Has(i) {
			continue
		}
		node.DiscoveredServices.Add(i)
		o.say("Port %d/tcp  %-10s %s %s", svc.Port, strings.ToUpper(string(svc.State)), svc.Name, svc.Version)
		if svc.Encryption != nil {
			o.say("  [ENC] %s encryption detected", svc.Encryption.EncryptionType)
		}
		if len(svc.Vulnerabilities) == 0 || !chance(g.rng, disc*0.7) {
			continue
		}
		for _, v := range svc.Vulnerabilities {
			id := types.VulnID(node.UID, i, v.Name)
			if node.DiscoveredVulns.Has(id) {
				continue
			}
			if chance(g.rng, 1-v.DiscoveryDifficulty+float64(p.Skills.Scanning)*0.05) {
				node.DiscoveredVulns.Add(id)
				o.say("  [!] %s", v.Name)
				if v.RequiresTool != "" {
					o.say("      Requires: %s", v.RequiresTool)
				}
			}
		}
	}

	if len(node.Employees) > 0 && chance(g.rng, disc) {
		o.say("Employees with system access:")
		for _, e := range sample(g.rng, node.Employees, 3) {
			o.say("  %s (%s) - %s", e.Name, e.Email, e.Department)
		}
	}

	g.grantXP(o, ExpScanMult*node.SecurityRating)
	g.settle(o, node, startTrace)
	return done(), nil
}

// --- Attack Session ---

// StartAttack opens an attack session against a discovered, scanned node.
func (g *Game) StartAttack(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}
	switch {
	case node.Compromised:
		return nil, reject(ReasonAlreadyCompromised, "%s is already compromised", node.Name)
	case node.TraceProgress >= TraceThreshold:
		return nil, reject(ReasonTraced, "%s has already traced you", node.Name)
	case len(KnownVulns(node)) == 0:
		return nil, reject(ReasonNoScanData, "no exploits available for %s, run a scan first", node.Name)
	}

	g.session = &AttackSession{NodeID: uid}
	o := &Outcome{}
	o.say("Target: %s | Segment: %s | ICE Level: %d", node.Name, node.NetworkSegment, node.ICELevel)
	if node.HasSIEM {
		o.say("[SIEM ACTIVE] - Enhanced monitoring")
	}
	if node.AdminActive {
		o.say("[ADMIN ONLINE] - Active defense")
	}
	return o, nil
}

func (g *Game) sessionNode() (*types.Node, error) {
	if g.session == nil {
		return nil, ErrNoSession
	}
	return g.Network.Node(g.session.NodeID)
}

// Exploit fires a discovered vulnerability at the session's node. A
// critical hit returns an Outcome carrying a Challenge; the action only
// resolves once AnswerChallenge is called.
func (g *Game) Exploit(vulnID string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.sessionNode()
	if err != nil {
		return nil, err
	}
	vuln, err := findVuln(node, vulnID)
	if err != nil {
		return nil, err
	}
	if vuln.RequiresTool != "" && !g.Player.HasTool(types.ToolType(vuln.RequiresTool)) {
		return nil, reject(ReasonMissingTool, "missing required tool: %s", vuln.RequiresTool)
	}

	o, done := g.begin(node)
	startTrace := node.TraceProgress
	o.say("Executing %s...", vuln.ExploitType)

	if chance(g.rng, SuccessRate(g.Player, *vuln)) {
		if vuln.Severity > CriticalSeverity {
			ch := newChallenge(g.rng, vulnID, ChallengeTimeout(g.Player, vuln.DiscoveryDifficulty), g.clock())
			g.session.Pending = ch
			o.Challenge = ch
			o.say("--- BYPASSING SECURITY LAYER ---")
			o.say("Solve to bypass ICE: %s (timeout: %.1fs)", ch.Prompt(), ch.Timeout.Seconds())
			return done(), nil
		}
		g.landExploit(o, node, vuln)
	} else {
		o.say("Exploit failed")
		node.TraceProgress += float64(vuln.TraceCost)
		if node.AdminActive && chance(g.rng, AdminExploitPatch) {
			vuln.PatchLevel++
			o.say("Admin patched the vulnerability!")
		}
	}

	g.finishAction(o, node, startTrace)
	return done(), nil
}

func (g *Game) landExploit(o *Outcome, node *types.Node, vuln *types.Vulnerability) {
	dmg := ExploitDamage(g.Player, randRange(g.rng, vuln.FirewallDamage))
	damageFirewall(node, dmg)
	o.say("Success! Firewall damage: -%d", dmg)
	g.grantXP(o, int(10*vuln.Severity))
}

// AnswerChallenge resolves the pending bypass challenge. Answers given
// after the timeout fail regardless of value.
func (g *Game) AnswerChallenge(answer string) (*Outcome, error) {
	if g.session == nil || g.session.Pending == nil {
		return nil, ErrNoSession
	}
	if g.PendingSkills > 0 {
		return nil, reject(ReasonSkillChoicePending, "choose a skill to upgrade first")
	}
	node, err := g.sessionNode()
	if err != nil {
		return nil, err
	}
	ch := g.session.Pending
	g.session.Pending = nil

	o, done := g.begin(node)
	startTrace := node.TraceProgress

	got, perr := strconv.Atoi(strings.TrimSpace(answer))
	switch {
	case g.clock().Sub(ch.IssuedAt) > ch.Timeout:
		o.say("TIMEOUT - Bypass failed")
	case perr != nil || got != ch.answer:
		o.say("INCORRECT CODE")
	default:
		o.say("ACCESS GRANTED")
		vuln, err := findVuln(node, ch.VulnID)
		if err != nil {
			return nil, err
		}
		g.landExploit(o, node, vuln)
		g.finishAction(o, node, startTrace)
		return done(), nil
	}

	o.say("Security bypass failed!")
	node.TraceProgress += ChallengeTrace
	g.finishAction(o, node, startTrace)
	return done(), nil
}

// DDoS floods the session's node with one of the player's botnets.
func (g *Game) DDoS(botnet int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.sessionNode()
	if err != nil {
		return nil, err
	}
	p := g.Player
	if len(p.Botnets) == 0 {
		return nil, reject(ReasonNoBotnets, "no botnets available")
	}
	if botnet < 0 || botnet >= len(p.Botnets) {
		return nil, fmt.Errorf("%w: botnet %d", ErrInvalidSelection, botnet)
	}

	o, done := g.begin(node)
	startTrace := node.TraceProgress
	b := p.Botnets[botnet]
	dmg := int(float64(b.DDoSPower) * b.Quality)
	damageFirewall(node, dmg)
	node.TraceProgress += DDoSTrace
	p.HeatLevel += DDoSHeat
	o.say("DDoS successful! Damage: -%d", dmg)
	o.say("Warning: High trace increase from DDoS")
	g.grantXP(o, DDoSExp)

	g.finishAction(o, node, startTrace)
	return done(), nil
}

// ClearTraces wipes logs on a node. Inside an attack session on the same
// node it counts as a session action.
func (g *Game) ClearTraces(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}

	o, done := g.begin(node)
	startTrace := node.TraceProgress
	amount := TraceClearAmount(g.Player)
	node.TraceProgress = max(0, node.TraceProgress-amount)
	o.say("Trace reduced by %d%%", int(amount))

	if g.session != nil && g.session.NodeID == uid {
		g.finishAction(o, node, startTrace)
	} else {
		g.settle(o, node, startTrace)
	}
	return done(), nil
}

// AbortAttack ends the session. Trace already accrued stays.
func (g *Game) AbortAttack() (*Outcome, error) {
	if g.session == nil {
		return nil, ErrNoSession
	}
	o := &Outcome{SessionEnded: true}
	o.say("Connection dropped")
	g.session = nil
	return o, nil
}

// InstallBackdoor plants persistent access on a compromised node.
func (g *Game) InstallBackdoor(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}
	if !node.Compromised {
		return nil, reject(ReasonNotCompromised, "node must be compromised first")
	}
	if node.BackdoorInstalled {
		return nil, reject(ReasonAlreadyInstalled, "backdoor already installed")
	}

	o, done := g.begin(node)
	startTrace := node.TraceProgress
	if chance(g.rng, BackdoorChance(g.Player)) {
		node.BackdoorInstalled = true
		o.say("Backdoor installed successfully")
		g.grantXP(o, node.SecurityRating*ExpBackdoorMult)
		g.LogEvent("Backdoor installed on " + node.Name)
	} else {
		o.say("Backdoor installation failed")
		node.TraceProgress += BackdoorFailTrace
	}
	g.settle(o, node, startTrace)
	return done(), nil
}

// --- Resolution ---

func damageFirewall(node *types.Node, dmg int) {
	node.FirewallStrength = max(0, node.FirewallStrength-dmg)
}

// finishAction closes one attack-session action: trace accrues, the admin
// may wake up, then trace and compromise are resolved.
func (g *Game) finishAction(o *Outcome, node *types.Node, startTrace float64) {
	g.session.Actions++
	node.TraceProgress += TraceIncrease(g.Player, node)

	if !node.AdminActive && node.TraceProgress > AdminActivateTrace && chance(g.rng, AdminActivateChance) {
		node.AdminActive = true
		node.TraceSpeed *= AdminTraceMult
		o.say("[ALERT] System administrator has been notified!")
	}

	now := g.Player.GameTime
	node.LastAttackTime = &now
	g.settle(o, node, startTrace)
}

// settle fires trace-complete when this action pushed trace over the
// threshold, compromises a node whose firewall is gone, and closes the
// session when either happened.
func (g *Game) settle(o *Outcome, node *types.Node, startTrace float64) {
	if !node.Compromised && startTrace < TraceThreshold && node.TraceProgress >= TraceThreshold {
		g.traceComplete(o, node)
	}
	if !node.Compromised && node.FirewallStrength <= 0 {
		g.compromise(o, node)
	}
	if g.session != nil && g.session.NodeID == node.UID && (o.Traced || o.Compromised) {
		g.session = nil
		o.SessionEnded = true
	}
}

func (g *Game) traceComplete(o *Outcome, node *types.Node) {
	p := g.Player
	o.Traced = true
	p.HeatLevel += TraceHeat
	p.IdentityHeat += TraceIdentityHeat
	penalty := randInt(g.rng, TracePenaltyMin, TracePenaltyMax)
	p.Credits = max(0, p.Credits-penalty)

	o.say("TRACE COMPLETE - LOCATION COMPROMISED")
	o.say("Heat level increased to %d%%", p.HeatLevel)
	o.say("Identity heat: %d%%", p.IdentityHeat)
	o.say("Credits lost: %s", credits(penalty))

	if p.IdentityHeat > InvestigationTrigger && !p.UnderInvestigation && chance(g.rng, InvestigationChance) {
		p.UnderInvestigation = true
		o.say("[CRITICAL] Law enforcement investigation initiated!")
		g.LogEvent("Investigation opened")
	}
	g.LogEvent("TRACED at " + node.Name)
	g.log.Printf("Player %s traced at %s (%s)", p.Handle, node.Name, node.UID)
}

// markCompromised is the only place a node's compromised flag is set.
func markCompromised(node *types.Node) {
	node.FirewallStrength = 0
	node.Compromised = true
}

func (g *Game) compromise(o *Outcome, node *types.Node) {
	p := g.Player
	markCompromised(node)
	o.Compromised = true
	p.DiscoveredNodes.Add(node.UID)
	p.CompromisedNodes.Add(node.UID)

	extracted := int(float64(node.DataValue) * p.HardwareBonus(types.SlotStorage))
	p.Credits += extracted
	p.Reputation += node.SecurityRating * 10
	o.say("NODE COMPROMISED: %s", node.Name)
	o.say("Data extracted: %s worth", credits(extracted))
	o.say("Reputation: +%d", node.SecurityRating*10)

	for _, c := range node.Connections {
		p.DiscoveredNodes.Add(c)
	}
	if len(node.EncryptedTraffic) > 0 {
		o.say("Found %d encrypted data packages", len(node.EncryptedTraffic))
	}

	for _, c := range g.Contracts {
		if c.TargetNodeUID != node.UID || c.Completed || c.Failed || !c.Objective.CompletesOnCompromise() {
			continue
		}
		g.completeContract(o, c)
	}

	g.LogEvent("Compromised " + node.Name)
	g.log.Printf("Player %s compromised %s (%s)", p.Handle, node.Name, node.UID)
	g.grantXP(o, node.SecurityRating*ExpCompromiseMult)
}
