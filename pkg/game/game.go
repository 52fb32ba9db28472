package game

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"time"

	"netrunner/pkg/types"
)

// Options configures a new or restored game. Zero values pick defaults.
type Options struct {
	Seed    int64 // 0 draws a random seed
	Handle  string
	Catalog *Catalog
	Clock   func() time.Time
	Logger  *log.Logger
}

// Game owns the whole world: the player, the network arena and every piece
// of auxiliary content. All mutation goes through its methods.
type Game struct {
	Player         *types.PlayerState
	Network        *Network
	Contracts      []*types.Contract
	Rivals         []*types.RivalHacker
	EventLog       []string
	MarketTools    []types.Tool
	MarketExploits []ExploitOffer
	Tick           uint64
	PendingSkills  int

	catalog *Catalog
	rng     RNG
	clock   func() time.Time
	log     *log.Logger
	session *AttackSession
}

// State is the persistent part of a Game.
type State struct {
	Seed          int64
	Tick          uint64
	PendingSkills int
	Player        *types.PlayerState
	Nodes         []*types.Node
	Contracts     []*types.Contract
	Rivals        []*types.RivalHacker
	EventLog      []string
	MarketTools   []types.Tool
}

func (o *Options) fill() {
	if o.Seed == 0 {
		o.Seed = rand.Int64N(999999) + 1
	}
	if o.Handle == "" {
		o.Handle = "ghost"
	}
	if o.Catalog == nil {
		o.Catalog = DefaultCatalog()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
}

func newPlayer(handle string, cat *Catalog, now time.Time) *types.PlayerState {
	p := &types.PlayerState{
		Handle:   handle,
		Level:    StartingLevel,
		Credits:  StartingCredits,
		Skills:   types.StartingSkills(),
		GameTime: now,
	}
	p.Normalize()
	for slot, hw := range cat.StarterKit {
		p.Hardware[slot] = hw
	}
	for _, f := range cat.Factions {
		p.Factions[f.Name] = &f
	}
	return p
}

// NewGame generates a fresh world from opts.Seed.
func NewGame(opts Options) *Game {
	opts.fill()
	now := opts.Clock().UTC().Truncate(time.Second)
	r := NewRand(opts.Seed)

	g := &Game{
		Player:  newPlayer(opts.Handle, opts.Catalog, now),
		catalog: opts.Catalog,
		rng:     r,
		clock:   opts.Clock,
		log:     opts.Logger,
	}
	g.Network = GenerateNetwork(opts.Seed, r, g.catalog)

	for i, n := 0, randInt(r, 3, 7); i < n; i++ {
		g.Rivals = append(g.Rivals, GenerateRival(r, g.catalog, g.Player.Level, now))
	}

	entry := g.Network.Filter(func(n *types.Node) bool { return n.SecurityRating <= 2 })
	if len(entry) > 0 {
		start := pick(r, entry)
		g.Player.CurrentLocation = start.UID
		g.Player.DiscoveredNodes.Add(start.UID)
	}

	for i := 0; i < InitialContracts; i++ {
		if c, ok := GenerateContract(r, g.catalog, g.Network, g.Player.Level, g.Player.Factions, now); ok {
			g.Contracts = append(g.Contracts, c)
		}
	}

	g.MarketTools = append([]types.Tool(nil), g.catalog.Tools...)
	g.MarketExploits = GenerateExploitOffers(r, g.catalog, g.Player.Level)

	g.log.Printf("New world seed=%d nodes=%d contracts=%d rivals=%d",
		opts.Seed, g.Network.Len(), len(g.Contracts), len(g.Rivals))
	return g
}

// Restore rebuilds a game from persisted state. Only generation is seeded;
// play after a restore draws from a fresh stream.
func Restore(st State, opts Options) *Game {
	opts.fill()
	cat := opts.Catalog

	p := st.Player
	if p == nil {
		p = newPlayer(opts.Handle, cat, opts.Clock().UTC().Truncate(time.Second))
	}
	p.Normalize()

	tools := st.MarketTools
	if tools == nil {
		tools = append([]types.Tool(nil), cat.Tools...)
	}

	g := &Game{
		Player:        p,
		Network:       NewNetworkFromNodes(st.Seed, st.Nodes),
		Contracts:     st.Contracts,
		Rivals:        st.Rivals,
		EventLog:      st.EventLog,
		MarketTools:   tools,
		Tick:          st.Tick,
		PendingSkills: st.PendingSkills,
		catalog:       cat,
		rng:           NewRand(rand.Int64()),
		clock:         opts.Clock,
		log:           opts.Logger,
	}
	g.MarketExploits = GenerateExploitOffers(g.rng, cat, p.Level)
	return g
}

// State returns the persistent view of the game. The returned values
// share memory with the game.
func (g *Game) State() State {
	return State{
		Seed:          g.Network.Seed,
		Tick:          g.Tick,
		PendingSkills: g.PendingSkills,
		Player:        g.Player,
		Nodes:         g.Network.List(),
		Contracts:     g.Contracts,
		Rivals:        g.Rivals,
		EventLog:      g.EventLog,
		MarketTools:   g.MarketTools,
	}
}

func (g *Game) Seed() int64             { return g.Network.Seed }
func (g *Game) Catalog() *Catalog       { return g.catalog }
func (g *Game) Now() time.Time          { return g.clock() }
func (g *Game) Session() *AttackSession { return g.session }

// CurrentNode is the node the player is connected to, or nil.
func (g *Game) CurrentNode() *types.Node {
	return g.Network.Nodes[g.Player.CurrentLocation]
}

// LogEvent appends a timestamped line to the in-game log, keeping the most
// recent EventLogKeep lines.
func (g *Game) LogEvent(msg string) {
	ts := g.Player.GameTime.Format("2006-01-02 15:04:05")
	g.EventLog = append(g.EventLog, "["+ts+"] "+msg)
	if extra := len(g.EventLog) - EventLogKeep; extra > 0 {
		g.EventLog = append([]string(nil), g.EventLog[extra:]...)
	}
}

// KnownNode returns a node the player has discovered, for read-only views.
func (g *Game) KnownNode(uid string) (*types.Node, error) {
	return g.knownNode(uid)
}

// knownNode resolves uid, treating nodes the player has not discovered as
// unknown.
func (g *Game) knownNode(uid string) (*types.Node, error) {
	node, err := g.Network.Node(uid)
	if err != nil {
		return nil, err
	}
	if !g.Player.DiscoveredNodes.Has(uid) {
		return nil, fmt.Errorf("%w: %s not discovered", ErrUnknownNode, uid)
	}
	return node, nil
}

// ready guards every player command: a pending skill choice or bypass
// challenge blocks everything else.
func (g *Game) ready() error {
	if g.PendingSkills > 0 {
		return reject(ReasonSkillChoicePending, "choose a skill to upgrade first")
	}
	if g.session != nil && g.session.Pending != nil {
		return reject(ReasonChallengePending, "answer the bypass challenge first")
	}
	return nil
}
