package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"netrunner/pkg/config"
	"netrunner/pkg/game"
	"netrunner/pkg/save"
	"netrunner/pkg/types"
)

// console is the terminal front end. Game state is only touched with mu
// held, and mu is never held while waiting for input.
type console struct {
	mu       sync.Mutex
	g        *game.Game
	saves    *save.Manager
	in       *bufio.Reader
	out      io.Writer
	autosave rate.Sometimes
	tickDue  bool
	last     time.Time
}

func newConsole(in *bufio.Reader, out io.Writer, saves *save.Manager, autosave time.Duration) *console {
	return &console{
		saves:    saves,
		in:       in,
		out:      out,
		autosave: rate.Sometimes{Interval: autosave},
		tickDue:  true,
	}
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) readLine() (string, bool) {
	text, err := c.in.ReadString('\n')
	if err != nil && text == "" {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// start loads the existing save when the player asks for it, otherwise it
// generates a new world. A save that cannot be read falls back to a new
// game.
func (c *console) start(cfg *config.Config, fresh bool) {
	opts := game.Options{Seed: cfg.Seed, Handle: cfg.Handle, Logger: InfoLog}

	if !fresh && c.saves.Exists() {
		c.printf("Saved game found. Load it? (y/n): ")
		answer, _ := c.readLine()
		if strings.HasPrefix(strings.ToLower(answer), "y") {
			doc, err := c.saves.Load()
			if err == nil {
				c.g = game.Restore(doc.State(), opts)
				c.printf("Welcome back, %s.\n", c.g.Player.Handle)
				return
			}
			ErrorLog.Printf("Load failed: %v", err)
			c.printf("[!] Save could not be loaded (%v). Starting a new game.\n", err)
		}
	}

	c.g = game.NewGame(opts)
	c.printf("New world generated (seed %d). Jacking in as %s.\n", c.g.Seed(), c.g.Player.Handle)
}

func (c *console) handleSignals() func() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case s := <-sig:
			InfoLog.Printf("Received %v, saving before exit", s)
			c.mu.Lock()
			if c.saves.TrySave(c.g) {
				c.printf("\nConnection severed. Progress saved.\n")
			} else {
				c.printf("\nConnection severed. Save failed.\n")
			}
			os.Exit(0)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}

// run drives the game until the player quits or input ends, then saves.
func (c *console) run() {
	c.last = time.Now()
	c.printf("Type 'help' for commands.\n")
	for {
		var ok bool
		switch {
		case c.pendingChallenge() != nil:
			ok = c.answerChallenge()
		case c.pendingSkills() > 0:
			ok = c.chooseSkill()
		default:
			ok = c.command()
		}
		if !ok {
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.g.AddPlaytime(time.Since(c.last))
	if c.saves.TrySave(c.g) {
		c.printf("Progress saved. Disconnecting.\n")
	} else {
		c.printf("[!] Save failed. Disconnecting.\n")
	}
}

func (c *console) pendingChallenge() *game.Challenge {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.g.Session(); s != nil {
		return s.Pending
	}
	return nil
}

func (c *console) pendingSkills() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g.PendingSkills
}

func (c *console) answerChallenge() bool {
	ch := c.pendingChallenge()
	c.printf("\n[BYPASS] Solve within %s: %s ", ch.Timeout.Round(100*time.Millisecond), ch.Prompt())
	answer, ok := c.readLine()
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.show(c.g.AnswerChallenge(answer))
	return true
}

func (c *console) chooseSkill() bool {
	c.mu.Lock()
	skills := c.g.Player.Skills
	c.mu.Unlock()

	c.printf("\nLEVEL UP! Choose a skill to upgrade:\n")
	for i, s := range types.AllSkills {
		c.printf("  %d. %-20s %d/%d\n", i+1, s, skills.Get(s), types.MaxSkillLevel)
	}
	c.printf("Skill: ")
	line, ok := c.readLine()
	if !ok {
		return false
	}
	i, err := strconv.Atoi(line)
	if err != nil || i < 1 || i > len(types.AllSkills) {
		c.printf("Invalid selection.\n")
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.show(c.g.ChooseSkill(types.AllSkills[i-1]))
	return true
}

// command runs the background world if the last command did something,
// then reads and dispatches one command.
func (c *console) command() bool {
	c.mu.Lock()
	now := time.Now()
	c.g.AddPlaytime(now.Sub(c.last))
	c.last = now
	if c.tickDue && c.g.Session() == nil {
		c.printLines(c.g.AdvanceTick().Lines)
	}
	c.tickDue = false
	prompt := c.prompt()
	c.mu.Unlock()

	c.printf("%s", prompt)
	line, ok := c.readLine()
	if !ok {
		return false
	}
	args := strings.Fields(line)
	if len(args) == 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	quit := c.dispatch(strings.ToLower(args[0]), args[1:])
	c.autosave.Do(func() { c.saves.TrySave(c.g) })
	return !quit
}

func (c *console) prompt() string {
	p := c.g.Player
	where := "offline"
	if n := c.g.CurrentNode(); n != nil {
		where = n.Name
	}
	if s := c.g.Session(); s != nil {
		if n, ok := c.g.Network.Nodes[s.NodeID]; ok {
			return fmt.Sprintf("\n[%s@%s ATTACK %s trace %.0f%%]> ", p.Handle, where, n.Name, n.TraceProgress)
		}
	}
	return fmt.Sprintf("\n[%s@%s L%d %s BTC heat %d%%]> ", p.Handle, where, p.Level, humanize.Comma(int64(p.Credits)), p.HeatLevel)
}

func (c *console) printLines(lines []string) {
	for _, l := range lines {
		c.printf("%s\n", l)
	}
}

// show prints a command result. Any successful command makes the world
// tick before the next prompt.
func (c *console) show(o *game.Outcome, err error) {
	if err != nil {
		c.showErr(err)
		return
	}
	c.printLines(o.Lines)
	if o.SessionEnded {
		c.printf("[session closed]\n")
	}
	c.tickDue = true
}

func (c *console) showErr(err error) {
	if rj, ok := game.IsRejected(err); ok {
		c.printf("[!] %s\n", rj.Message)
		return
	}
	switch {
	case errors.Is(err, game.ErrInvalidSelection), errors.Is(err, game.ErrUnknownNode),
		errors.Is(err, game.ErrUnknownVulnerability), errors.Is(err, game.ErrNoSession):
		c.printf("[!] %v\n", err)
	default:
		ErrorLog.Printf("Command failed: %v", err)
		c.printf("[!] %v\n", err)
	}
}

func (c *console) viewed() { c.tickDue = true }

// node resolves a node argument: "." is the current node, otherwise an
// exact uid, a uid prefix or a display name among discovered nodes.
func (c *console) node(arg string) (string, bool) {
	if arg == "." {
		return c.g.Player.CurrentLocation, true
	}
	if _, ok := c.g.Network.Nodes[arg]; ok {
		return arg, true
	}
	for _, uid := range c.g.Player.DiscoveredNodes.Sorted() {
		n := c.g.Network.Nodes[uid]
		if n == nil {
			continue
		}
		if (len(arg) >= 4 && strings.HasPrefix(uid, arg)) || strings.EqualFold(n.Name, arg) {
			return uid, true
		}
	}
	c.printf("[!] Unknown node %q\n", arg)
	return "", false
}

// index parses a 1-based menu number.
func (c *console) index(arg string) (int, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 {
		c.printf("Invalid selection.\n")
		return 0, false
	}
	return i - 1, true
}

func (c *console) need(args []string, n int, usage string) bool {
	if len(args) < n {
		c.printf("Usage: %s\n", usage)
		return false
	}
	return true
}

// dispatch runs one command and reports whether the player quit.
func (c *console) dispatch(cmd string, args []string) bool {
	g := c.g
	switch cmd {
	case "help", "?":
		c.help()
	case "quit", "exit":
		return true
	case "save":
		if c.saves.TrySave(g) {
			c.printf("Game saved.\n")
		} else {
			c.printf("[!] Save failed. Playing on in memory.\n")
		}
	case "status":
		c.status()
		c.viewed()
	case "map":
		c.networkMap()
		c.viewed()
	case "discover":
		c.show(g.DiscoverNodes())
	case "move", "connect":
		if c.need(args, 1, "move <node>") {
			if uid, ok := c.node(args[0]); ok {
				c.show(g.Navigate(uid))
			}
		}
	case "scan":
		if c.need(args, 1, "scan <node>") {
			if uid, ok := c.node(args[0]); ok {
				c.show(g.Scan(uid))
			}
		}
	case "attack":
		if c.need(args, 1, "attack <node>") {
			if uid, ok := c.node(args[0]); ok {
				c.show(g.StartAttack(uid))
				c.vulns()
			}
		}
	case "vulns":
		c.vulns()
	case "exploit":
		if c.need(args, 1, "exploit <n>") {
			c.exploit(args[0])
		}
	case "ddos":
		if c.need(args, 1, "ddos <botnet>") {
			if i, ok := c.index(args[0]); ok {
				c.show(g.DDoS(i))
			}
		}
	case "clear":
		uid := g.Player.CurrentLocation
		if s := g.Session(); s != nil {
			uid = s.NodeID
		}
		if len(args) > 0 {
			var ok bool
			if uid, ok = c.node(args[0]); !ok {
				break
			}
		}
		c.show(g.ClearTraces(uid))
	case "abort":
		c.show(g.AbortAttack())
	case "backdoor":
		if c.need(args, 1, "backdoor <node>") {
			if uid, ok := c.node(args[0]); ok {
				c.show(g.InstallBackdoor(uid))
			}
		}
	case "phish", "osint", "recon", "employees", "traffic", "sell", "bounce-add":
		c.nodeCommand(cmd, args)
	case "creds":
		if c.need(args, 2, "creds <node> <employee>") {
			if uid, ok := c.node(args[0]); ok {
				if i, ok := c.index(args[1]); ok {
					c.show(g.UseCredentials(uid, i))
				}
			}
		}
	case "crack":
		if c.need(args, 2, "crack <node> <n>") {
			if uid, ok := c.node(args[0]); ok {
				if i, ok := c.index(args[1]); ok {
					c.show(g.Crack(uid, i))
				}
			}
		}
	case "contracts":
		c.contracts()
		c.viewed()
	case "accept":
		if c.need(args, 1, "accept <n>") {
			if i, ok := c.index(args[0]); ok {
				board := g.OpenContracts()
				if i >= len(board) {
					c.printf("Invalid selection.\n")
					break
				}
				c.show(g.AcceptContract(board[i].UID))
			}
		}
	case "market":
		c.market()
		c.viewed()
	case "buy":
		c.buy(args)
	case "proxy":
		c.show(g.BuyProxy())
	case "launder":
		c.show(g.Launder())
	case "botnets":
		c.botnets()
		c.viewed()
	case "botnet":
		c.botnet(args)
	case "rivals":
		c.rivals()
		c.viewed()
	case "hackrival":
		if c.need(args, 1, "hackrival <n>") {
			if i, ok := c.index(args[0]); ok {
				c.show(g.HackRival(i))
			}
		}
	case "bounce-clear":
		c.show(g.ClearBounce())
	case "log":
		start := max(0, len(g.EventLog)-15)
		c.printLines(g.EventLog[start:])
		c.viewed()
	case "events":
		for _, ev := range g.Player.ActiveEvents {
			c.printf("  %s (%dh left): %s\n", ev.Name, ev.Duration, ev.Description)
		}
		c.viewed()
	default:
		c.printf("Unknown command %q. Type 'help'.\n", cmd)
	}
	return false
}

func (c *console) nodeCommand(cmd string, args []string) {
	if !c.need(args, 1, cmd+" <node>") {
		return
	}
	uid, ok := c.node(args[0])
	if !ok {
		return
	}
	g := c.g
	switch cmd {
	case "phish":
		c.show(g.Phish(uid))
	case "osint":
		c.show(g.OSINT(uid))
	case "recon":
		c.show(g.SocialRecon(uid))
	case "sell":
		c.show(g.SellData(uid))
	case "bounce-add":
		c.show(g.AddBounce(uid))
	case "employees":
		n, err := g.KnownNode(uid)
		if err != nil {
			c.showErr(err)
			return
		}
		for i, e := range n.Employees {
			mark := ""
			if e.Compromised {
				mark = " [compromised]"
			}
			c.printf("  %d. %s <%s> %s, access %d%s\n", i+1, e.Name, e.Email, e.Department, e.AccessLevel, mark)
		}
		c.viewed()
	case "traffic":
		n, err := g.KnownNode(uid)
		if err != nil {
			c.showErr(err)
			return
		}
		for i, d := range n.EncryptedTraffic {
			mark := ""
			if d.Cracked {
				mark = " [cracked]"
			}
			c.printf("  %d. %s, %s, worth %s BTC%s\n", i+1, d.EncryptionType, humanize.Bytes(uint64(d.DataSize)), humanize.Comma(int64(d.Value)), mark)
		}
		c.viewed()
	}
}

func (c *console) exploit(arg string) {
	s := c.g.Session()
	if s == nil {
		c.showErr(game.ErrNoSession)
		return
	}
	i, ok := c.index(arg)
	if !ok {
		return
	}
	vulns := game.KnownVulns(c.g.Network.Nodes[s.NodeID])
	if i >= len(vulns) {
		c.printf("Invalid selection.\n")
		return
	}
	c.show(c.g.Exploit(vulns[i].ID))
}

func (c *console) vulns() {
	s := c.g.Session()
	if s == nil {
		return
	}
	n := c.g.Network.Nodes[s.NodeID]
	c.printf("Target %s  firewall %d/%d  trace %.0f%%\n", n.Name, n.FirewallStrength, n.MaxFirewall, n.TraceProgress)
	for i, v := range game.KnownVulns(n) {
		c.printf("  %d. %-28s on %-10s success %.0f%%\n", i+1, v.Vuln.Name, v.Service, game.SuccessRate(c.g.Player, *v.Vuln)*100)
	}
}

func (c *console) buy(args []string) {
	if !c.need(args, 2, "buy tool|exploit|hw <n>") {
		return
	}
	i, ok := c.index(args[1])
	if !ok {
		return
	}
	switch args[0] {
	case "tool":
		c.show(c.g.BuyTool(i))
	case "exploit":
		c.show(c.g.BuyExploit(i))
	case "hw", "hardware":
		c.show(c.g.BuyHardware(i))
	default:
		c.printf("Usage: buy tool|exploit|hw <n>\n")
	}
}

func (c *console) botnet(args []string) {
	if !c.need(args, 1, "botnet build|maintain|expand|dismantle [n]") {
		return
	}
	if args[0] == "build" {
		c.show(c.g.BuildBotnet())
		return
	}
	if !c.need(args, 2, "botnet "+args[0]+" <n>") {
		return
	}
	i, ok := c.index(args[1])
	if !ok {
		return
	}
	switch args[0] {
	case "maintain":
		c.show(c.g.MaintainBotnet(i))
	case "expand":
		c.show(c.g.ExpandBotnet(i))
	case "dismantle":
		c.show(c.g.DismantleBotnet(i))
	default:
		c.printf("Usage: botnet build|maintain|expand|dismantle [n]\n")
	}
}

func (c *console) status() {
	p := c.g.Player
	c.printf("%s  level %d  XP %d/%d\n", p.Handle, p.Level, p.Experience, game.ExpForLevel(p.Level))
	c.printf("Credits %s BTC  reputation %d  heat %d%%  identity heat %d%%\n",
		humanize.Comma(int64(p.Credits)), p.Reputation, p.HeatLevel, p.IdentityHeat)
	c.printf("Game time %s  tick %d\n", p.GameTime.Format("2006-01-02 15:04"), c.g.Tick)
	for _, s := range types.AllSkills {
		c.printf("  %-20s %d\n", s, p.Skills.Get(s))
	}
	for _, slot := range []string{"CPU", "RAM", "Storage", "Cooling"} {
		if hw, ok := p.Hardware[slot]; ok {
			c.printf("  %-8s %s (x%.1f)\n", slot, hw.Name, hw.Bonus)
		}
	}
	for _, t := range p.Inventory {
		c.printf("  tool: %s (%s)\n", t.Name, t.ToolType)
	}
	if len(p.BouncedNodes) > 0 || p.ProxyChains > 0 {
		c.printf("Proxy chains %d  bounce chain %d hops\n", p.ProxyChains, len(p.BouncedNodes))
	}
	if p.UnderInvestigation {
		c.printf("!! UNDER INVESTIGATION: %.0f%%\n", p.InvestigationProgress)
	}
}

func (c *console) networkMap() {
	p := c.g.Player
	for _, n := range c.g.Network.List() {
		if !p.DiscoveredNodes.Has(n.UID) {
			continue
		}
		mark := " "
		switch {
		case n.UID == p.CurrentLocation:
			mark = "*"
		case p.CompromisedNodes.Has(n.UID):
			mark = "#"
		}
		c.printf("%s %s  %-32s %-15s %-14s sec %d  trace %.0f%%\n", mark, short(n.UID), n.Name, n.IPAddress, n.NetworkType, n.SecurityRating, n.TraceProgress)
	}
	c.printf("Adjacent:")
	for _, n := range c.g.Neighbours() {
		c.printf(" %s", n.Name)
	}
	c.printf("\n")
}

func (c *console) contracts() {
	for i, k := range c.g.ContractBoard() {
		c.printf("  %d. %s  reward %s BTC  difficulty %d  from %s\n", i+1, k.Title, humanize.Comma(int64(k.Reward)), k.Difficulty, k.Contractor)
		if k.Deadline != nil {
			c.printf("     deadline %s\n", k.Deadline.Format("2006-01-02 15:04"))
		}
	}
}

func (c *console) market() {
	c.printf("Tools:\n")
	for i, t := range c.g.MarketTools {
		c.printf("  %d. %-24s %10s BTC  L%d  %s\n", i+1, t.Name, humanize.Comma(int64(t.Cost)), t.LevelRequirement, t.Description)
	}
	c.printf("Exploits:\n")
	for i, x := range c.g.BrowseExploits() {
		c.printf("  %d. %-24s %10s BTC  L%d\n", i+1, x.Name, humanize.Comma(int64(x.Cost)), x.LevelReq)
	}
	c.printf("Hardware:\n")
	for i, h := range c.g.MarketHardware() {
		c.printf("  %d. %-24s %10s BTC  L%d  %s\n", i+1, h.Name, humanize.Comma(int64(h.Cost)), h.Level, h.Description)
	}
	c.printf("Proxy chain: %s BTC\n", humanize.Comma(int64(game.ProxyCost(c.g.Player))))
}

func (c *console) botnets() {
	if len(c.g.Player.Botnets) == 0 {
		c.printf("No botnets.\n")
		return
	}
	for i, b := range c.g.Player.Botnets {
		c.printf("  %d. size %d  quality %.2f  power %d  upkeep %s BTC  detected %d\n",
			i+1, b.Size, b.Quality, b.DDoSPower, humanize.Comma(int64(b.MaintenanceCost)), b.DetectedNodes)
	}
}

func (c *console) rivals() {
	for i, r := range c.g.Rivals {
		mood := "neutral"
		if r.Hostile {
			mood = "HOSTILE"
		}
		c.printf("  %d. %-16s skill %d  %s  %s, last seen %s\n", i+1, r.Name, r.SkillLevel, r.Specialization, mood, r.LastSeen.Format("2006-01-02 15:04"))
	}
}

func (c *console) help() {
	c.printf(`Recon:      status  map  discover  move <node>  scan <node>  log  events
Attack:     attack <node>  vulns  exploit <n>  ddos <botnet>  clear [node]  abort  backdoor <node>
Social:     osint <node>  recon <node>  employees <node>  phish <node>  creds <node> <employee>
Crypto:     traffic <node>  crack <node> <n>
Economy:    contracts  accept <n>  market  buy tool|exploit|hw <n>  proxy  launder  sell <node>
Botnets:    botnets  botnet build|maintain|expand|dismantle [n]
Rivals:     rivals  hackrival <n>
Stealth:    bounce-add <node>  bounce-clear
System:     save  quit
Nodes may be given as a name, a uid prefix or "." for the current node.
`)
}

func short(uid string) string {
	if len(uid) > 8 {
		return uid[:8]
	}
	return uid
}
