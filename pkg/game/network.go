package game

import (
	"fmt"

	"netrunner/pkg/types"
)

// Network is the arena of nodes. Edges are stored on the nodes as id
// lists; Order keeps generation order for stable listings.
type Network struct {
	Seed  int64
	Nodes map[string]*types.Node
	Order []string
}

func (n *Network) add(node *types.Node) {
	n.Nodes[node.UID] = node
	n.Order = append(n.Order, node.UID)
}

// NewNetworkFromNodes rebuilds an arena from a node list, keeping list
// order.
func NewNetworkFromNodes(seed int64, nodes []*types.Node) *Network {
	net := &Network{Seed: seed, Nodes: make(map[string]*types.Node, len(nodes))}
	for _, node := range nodes {
		node.Normalize()
		net.add(node)
	}
	return net
}

func (n *Network) Node(uid string) (*types.Node, error) {
	node, ok := n.Nodes[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, uid)
	}
	return node, nil
}

// List returns every node in generation order.
func (n *Network) List() []*types.Node {
	out := make([]*types.Node, 0, len(n.Order))
	for _, uid := range n.Order {
		out = append(out, n.Nodes[uid])
	}
	return out
}

func (n *Network) Filter(keep func(*types.Node) bool) []*types.Node {
	var out []*types.Node
	for _, uid := range n.Order {
		if node := n.Nodes[uid]; keep(node) {
			out = append(out, node)
		}
	}
	return out
}

func (n *Network) Len() int { return len(n.Order) }
