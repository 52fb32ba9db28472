package game

import (
	"fmt"

	"netrunner/pkg/types"
)

// --- Social Engineering ---

func employeesOf(node *types.Node) error {
	if len(node.Employees) == 0 {
		return reject(ReasonNoTargets, "no employee data available for %s", node.Name)
	}
	return nil
}

// Phish targets a random employee who has not been compromised yet.
func (g *Game) Phish(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}
	if err := employeesOf(node); err != nil {
		return nil, err
	}
	var targets []int
	for i, e := range node.Employees {
		if !e.Compromised {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return nil, reject(ReasonNoTargets, "all employees already compromised")
	}

	o, done := g.begin(node)
	startTrace := node.TraceProgress
	e := &node.Employees[pick(g.rng, targets)]
	o.say("Target: %s (%s), %s, access level %d/5", e.Name, e.Email, e.Department, e.AccessLevel)

	if chance(g.rng, PhishChance(g.Player, *e)) {
		e.Compromised = true
		damageFirewall(node, e.AccessLevel*30)
		node.TraceProgress += PhishingSuccessTrace
		o.say("Success! %s clicked the phishing link", e.Name)
		g.grantXP(o, e.AccessLevel*15)
	} else {
		node.TraceProgress += PhishingFailTrace
		g.Player.HeatLevel += PhishingFailHeat
		o.say("Phishing attempt failed, target reported the email to IT security")
	}
	g.settle(o, node, startTrace)
	return done(), nil
}

// OSINT searches public sources for up to five employees.
func (g *Game) OSINT(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}
	if err := employeesOf(node); err != nil {
		return nil, err
	}

	o, done := g.begin(node)
	for _, e := range sample(g.rng, node.Employees, 5) {
		if !chance(g.rng, e.SocialMediaActivity) {
			continue
		}
		o.say("%s: %s, active in %s", e.Name, e.Email, e.Department)
		if chance(g.rng, 0.3) {
			o.say("  Personal email pattern detected")
		}
		if chance(g.rng, 0.2) {
			o.say("  Security question hints found")
		}
	}
	g.grantXP(o, 10)
	return done(), nil
}

// SocialRecon studies a high-activity employee, making them easier to
// phish.
func (g *Game) SocialRecon(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}
	if err := employeesOf(node); err != nil {
		return nil, err
	}
	var active []int
	for i, e := range node.Employees {
		if e.SocialMediaActivity > 0.6 {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		return nil, reject(ReasonNoTargets, "no high-activity profiles found")
	}

	o, done := g.begin(node)
	e := &node.Employees[pick(g.rng, active)]
	o.say("Profile analysis: %s, works at %s in %s", e.Name, node.Name, e.Department)
	if chance(g.rng, 0.4) {
		o.say("  Mentioned using %s", pick(g.rng, g.catalog.SocialApps))
	}
	if chance(g.rng, 0.3) {
		o.say("  Shared photo with security badge visible")
	}
	e.PhishingSusceptibility = min(1.0, e.PhishingSusceptibility+0.1)
	g.grantXP(o, 15)
	return done(), nil
}

// UseCredentials spends a compromised employee's access against their
// node's firewall.
func (g *Game) UseCredentials(uid string, employee int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}
	if err := employeesOf(node); err != nil {
		return nil, err
	}
	if employee < 0 || employee >= len(node.Employees) {
		return nil, fmt.Errorf("%w: employee %d", ErrInvalidSelection, employee)
	}
	e := node.Employees[employee]
	if !e.Compromised {
		return nil, reject(ReasonNotCompromised, "%s has not been phished yet", e.Name)
	}

	o, done := g.begin(node)
	startTrace := node.TraceProgress
	dmg := e.AccessLevel * 25
	damageFirewall(node, dmg)
	node.TraceSpeed *= 0.8
	o.say("Using %s's credentials...", e.Name)
	o.say("Firewall weakened by %d points", dmg)
	g.grantXP(o, e.AccessLevel*10)
	g.settle(o, node, startTrace)
	return done(), nil
}

// --- Cryptanalysis ---

// Crack attempts to break one intercepted data package on a node.
func (g *Game) Crack(uid string, index int) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}
	if len(node.EncryptedTraffic) == 0 {
		return nil, reject(ReasonNoTargets, "no encrypted data available")
	}
	if index < 0 || index >= len(node.EncryptedTraffic) {
		return nil, fmt.Errorf("%w: package %d", ErrInvalidSelection, index)
	}
	d := &node.EncryptedTraffic[index]
	if d.Cracked {
		return nil, fmt.Errorf("%w: package %d already decrypted", ErrInvalidSelection, index)
	}

	o, done := g.begin(node)
	o.say("Attempting to crack %s...", d.EncryptionType)
	if chance(g.rng, CrackChance(g.Player, *d)) {
		d.Cracked = true
		g.Player.Credits += d.Value
		o.say("Decryption successful! Gained %s", credits(d.Value))
		g.grantXP(o, int(d.Difficulty*50))
	} else {
		o.say("Decryption failed")
	}
	return done(), nil
}
