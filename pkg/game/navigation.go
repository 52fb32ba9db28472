package game

import (
	"fmt"
	"slices"

	"netrunner/pkg/types"
)

// DiscoverNodes maps the connections of the current node.
func (g *Game) DiscoverNodes() (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	cur := g.CurrentNode()
	if cur == nil {
		return nil, fmt.Errorf("%w: no current location", ErrUnknownNode)
	}

	p := g.Player
	o := &Outcome{}
	found := 0
	for _, uid := range cur.Connections {
		if p.DiscoveredNodes.Has(uid) || !chance(g.rng, NodeDiscoveryChance(p)) {
			continue
		}
		p.DiscoveredNodes.Add(uid)
		if n, ok := g.Network.Nodes[uid]; ok {
			o.say("Found: %s (%s) - %s", n.Name, n.IPAddress, n.NetworkType)
		}
		found++
	}
	if found == 0 {
		o.say("No new nodes discovered")
	}
	return o, nil
}

// Navigate moves to a discovered neighbour of the current node, dropping
// any open attack session.
func (g *Game) Navigate(uid string) (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	node, err := g.knownNode(uid)
	if err != nil {
		return nil, err
	}
	if cur := g.CurrentNode(); cur != nil && !cur.ConnectedTo(uid) {
		return nil, fmt.Errorf("%w: %s is not connected to %s", ErrInvalidSelection, node.Name, cur.Name)
	}

	o := &Outcome{}
	if g.session != nil {
		g.session = nil
		o.SessionEnded = true
	}
	g.Player.CurrentLocation = uid
	o.say("Connected to %s (%s)", node.Name, node.IPAddress)
	return o, nil
}

// Neighbours lists the discovered nodes adjacent to the current one.
func (g *Game) Neighbours() []*types.Node {
	cur := g.CurrentNode()
	if cur == nil {
		return nil
	}
	var out []*types.Node
	for _, uid := range cur.Connections {
		if n, ok := g.Network.Nodes[uid]; ok && g.Player.DiscoveredNodes.Has(uid) {
			out = append(out, n)
		}
	}
	return out
}

// --- Connection Bouncing ---

// AddBounce appends a compromised node to the relay chain.
func (g *Game) AddBounce(uid string) (*Outcome, error) {
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
	if slices.Contains(p.BouncedNodes, uid) {
		return nil, fmt.Errorf("%w: %s is already in the bounce chain", ErrInvalidSelection, node.Name)
	}
	p.BouncedNodes = append(p.BouncedNodes, uid)

	o := &Outcome{}
	o.say("Added %s to bounce chain", node.Name)
	o.say("New stealth bonus: -%d%% trace", len(p.BouncedNodes)*12)
	return o, nil
}

func (g *Game) ClearBounce() (*Outcome, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	g.Player.BouncedNodes = nil
	o := &Outcome{}
	o.say("Bounce chain cleared")
	return o, nil
}

// BounceCandidates are compromised nodes not yet in the chain.
func (g *Game) BounceCandidates() []*types.Node {
	var out []*types.Node
	for _, uid := range g.Player.CompromisedNodes.Sorted() {
		if slices.Contains(g.Player.BouncedNodes, uid) {
			continue
		}
		if n, ok := g.Network.Nodes[uid]; ok {
			out = append(out, n)
		}
	}
	return out
}
