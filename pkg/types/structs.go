package types

import (
	"fmt"
	"time"
)

// --- Network ---

// Range is an inclusive integer interval.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Vulnerability struct {
	Name                string      `json:"name"`
	ExploitType         ExploitType `json:"exploit_type"`
	Severity            float64     `json:"severity"` // 0.0 to 1.0
	PatchLevel          int         `json:"patch_level"`
	DiscoveryDifficulty float64     `json:"discovery_difficulty"`
	FirewallDamage      Range       `json:"firewall_damage"`
	TraceCost           int         `json:"trace_cost"`
	SuccessRateBase     float64     `json:"success_rate_base"`
	RequiresTool        string      `json:"requires_tool,omitempty"`
}

type EncryptedData struct {
	EncryptionType EncryptionType `json:"encryption_type"`
	DataSize       int            `json:"data_size"`
	Value          int            `json:"value"`
	Difficulty     float64        `json:"difficulty"`
	Cracked        bool           `json:"cracked"`
}

type Employee struct {
	Name                   string  `json:"name"`
	Email                  string  `json:"email"`
	Department             string  `json:"department"`
	AccessLevel            int     `json:"access_level"`
	SocialMediaActivity    float64 `json:"social_media_activity"`
	PhishingSusceptibility float64 `json:"phishing_susceptibility"`
	Compromised            bool    `json:"compromised"`
}

type Service struct {
	Name                string          `json:"name"`
	Version             string          `json:"version"`
	Port                int             `json:"port"`
	State               ServiceState    `json:"state"`
	Vulnerabilities     []Vulnerability `json:"vulnerabilities"`
	Encryption          *EncryptedData  `json:"encryption"`
	EmployeesWithAccess []Employee      `json:"employees_with_access"`
}

type Honeypot struct {
	Port            int     `json:"port"`
	FakeService     string  `json:"fake_service"`
	DetectionChance float64 `json:"detection_chance"`
	TraceIncrease   int     `json:"trace_increase"`
}

// Node is one host of the network graph. Connections hold node ids only.
type Node struct {
	UID                 string          `json:"uid"`
	Name                string          `json:"name"`
	IPAddress           string          `json:"ip_address"`
	NetworkType         NetworkType     `json:"network_type"`
	SecurityRating      int             `json:"security_rating"`
	FirewallStrength    int             `json:"firewall_strength"`
	MaxFirewall         int             `json:"max_firewall"`
	ICELevel            int             `json:"ice_level"`
	Services            []Service       `json:"services"`
	DiscoveredServices  Set[int]        `json:"discovered_services"`
	DiscoveredVulns     Set[string]     `json:"discovered_vulns"`
	Compromised         bool            `json:"compromised"`
	DataValue           int             `json:"data_value"`
	TraceProgress       float64         `json:"trace_progress"`
	TraceSpeed          float64         `json:"trace_speed"`
	LastAttackTime      *time.Time      `json:"last_attack_time"`
	Connections         []string        `json:"connections"`
	Honeypots           []Honeypot      `json:"honeypots"`
	HasSIEM             bool            `json:"has_siem"`
	HasIncidentResponse bool            `json:"has_incident_response"`
	AdminActive         bool            `json:"admin_active"`
	AdminSkill          int             `json:"admin_skill"`
	BackdoorInstalled   bool            `json:"backdoor_installed"`
	NetworkSegment      Segment         `json:"network_segment"`
	Employees           []Employee      `json:"employees"`
	EncryptedTraffic    []EncryptedData `json:"encrypted_traffic"`
}

// VulnID is the discovery key of a vulnerability: unique per node and
// service even when two services share a template.
func VulnID(nodeUID string, serviceIndex int, vulnName string) string {
	return fmt.Sprintf("%s_%d_%s", nodeUID, serviceIndex, vulnName)
}

func (n *Node) ConnectedTo(uid string) bool {
	for _, c := range n.Connections {
		if c == uid {
			return true
		}
	}
	return false
}

// Connect adds uid to the adjacency list if it is not there already.
func (n *Node) Connect(uid string) {
	if uid == n.UID || n.ConnectedTo(uid) {
		return
	}
	n.Connections = append(n.Connections, uid)
}

// --- Player ---

type Tool struct {
	Name             string   `json:"name"`
	ToolType         ToolType `json:"tool_type"`
	Cost             int      `json:"cost"`
	Effectiveness    float64  `json:"effectiveness"`
	Description      string   `json:"description"`
	LevelRequirement int      `json:"level_requirement"`
	StealthPenalty   float64  `json:"stealth_penalty"`
}

type HardwareComponent struct {
	Name        string       `json:"name"`
	HType       HardwareType `json:"htype"`
	Level       int          `json:"level"`
	Cost        int          `json:"cost"`
	Bonus       float64      `json:"bonus"`
	Description string       `json:"description"`
}

type Botnet struct {
	Size            int     `json:"size"`
	Quality         float64 `json:"quality"` // 0.0 to 1.0
	MaintenanceCost int     `json:"maintenance_cost"`
	DDoSPower       int     `json:"ddos_power"`
	DetectedNodes   int     `json:"detected_nodes"`
}

type Faction struct {
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
	Hostile    bool   `json:"hostile"`
}

type WorldEvent struct {
	Name          string       `json:"name"`
	EType         EventType    `json:"etype"`
	Duration      int          `json:"duration"` // ticks
	Multiplier    float64      `json:"multiplier"`
	Description   string       `json:"description"`
	TargetFaction *string      `json:"target_faction"`
	TargetNetwork *NetworkType `json:"target_network"`
}

type PlayerState struct {
	Handle                string                       `json:"handle"`
	Level                 int                          `json:"level"`
	Experience            int                          `json:"experience"`
	Credits               int                          `json:"credits"`
	Reputation            int                          `json:"reputation"`
	HeatLevel             int                          `json:"heat_level"`
	Skills                Skills                       `json:"skills"`
	DiscoveredNodes       Set[string]                  `json:"discovered_nodes"`
	CompromisedNodes      Set[string]                  `json:"compromised_nodes"`
	CurrentLocation       string                       `json:"current_location"`
	Inventory             []Tool                       `json:"inventory"`
	ActiveContracts       []string                     `json:"active_contracts"`
	CompletedContracts    Set[string]                  `json:"completed_contracts"`
	GameTime              time.Time                    `json:"game_time"`
	TotalPlaytime         Seconds                      `json:"total_playtime"`
	Botnets               []Botnet                     `json:"botnets"`
	Factions              map[string]*Faction          `json:"factions"`
	IdentityHeat          int                          `json:"identity_heat"`
	KnownExploits         Set[string]                  `json:"known_exploits"`
	ProxyChains           int                          `json:"proxy_chains"`
	SafeHouses            []string                     `json:"safe_houses"`
	UnderInvestigation    bool                         `json:"under_investigation"`
	InvestigationProgress float64                      `json:"investigation_progress"`
	Hardware              map[string]HardwareComponent `json:"hardware"`
	ActiveEvents          []WorldEvent                 `json:"active_events"`
	BouncedNodes          []string                     `json:"bounced_nodes"`
}

// HardwareBonus returns the bonus of the component in slot, or 1.0 when
// the slot is empty.
func (p *PlayerState) HardwareBonus(slot string) float64 {
	if hw, ok := p.Hardware[slot]; ok {
		return hw.Bonus
	}
	return 1.0
}

// ToolBonus sums the effectiveness of every owned tool of type t.
func (p *PlayerState) ToolBonus(t ToolType) float64 {
	var total float64
	for _, tool := range p.Inventory {
		if tool.ToolType == t {
			total += tool.Effectiveness
		}
	}
	return total
}

func (p *PlayerState) HasTool(t ToolType) bool {
	for _, tool := range p.Inventory {
		if tool.ToolType == t {
			return true
		}
	}
	return false
}

func (p *PlayerState) OwnsTool(name string) bool {
	for _, tool := range p.Inventory {
		if tool.Name == name {
			return true
		}
	}
	return false
}

// EventMultiplier multiplies together the multipliers of every active
// event of the given types.
func (p *PlayerState) EventMultiplier(types ...EventType) float64 {
	m := 1.0
	for _, ev := range p.ActiveEvents {
		for _, t := range types {
			if ev.EType == t {
				m *= ev.Multiplier
			}
		}
	}
	return m
}

// Normalize replaces nil sets and maps with empty ones. Saves written by
// older versions may omit them.
func (p *PlayerState) Normalize() {
	if p.DiscoveredNodes == nil {
		p.DiscoveredNodes = NewSet[string]()
	}
	if p.CompromisedNodes == nil {
		p.CompromisedNodes = NewSet[string]()
	}
	if p.CompletedContracts == nil {
		p.CompletedContracts = NewSet[string]()
	}
	if p.KnownExploits == nil {
		p.KnownExploits = NewSet[string]()
	}
	if p.Factions == nil {
		p.Factions = map[string]*Faction{}
	}
	if p.Hardware == nil {
		p.Hardware = map[string]HardwareComponent{}
	}
	// Older saves keyed upgrades by a mis-cased slot name ("Cpu"), leaving
	// the stock part in the real slot.
	for key, hw := range p.Hardware {
		if slot := hw.HType.Slot(); slot != "" && slot != key {
			delete(p.Hardware, key)
			p.Hardware[slot] = hw
		}
	}
}

func (n *Node) Normalize() {
	if n.DiscoveredServices == nil {
		n.DiscoveredServices = NewSet[int]()
	}
	if n.DiscoveredVulns == nil {
		n.DiscoveredVulns = NewSet[string]()
	}
}

// --- World ---

type Contract struct {
	UID              string     `json:"uid"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	TargetNodeUID    string     `json:"target_node_uid"`
	Objective        Objective  `json:"objective"`
	Reward           int        `json:"reward"`
	ReputationChange int        `json:"reputation_change"`
	TimeLimit        *Seconds   `json:"time_limit"`
	Difficulty       int        `json:"difficulty"`
	Contractor       string     `json:"contractor"`
	Faction          *string    `json:"faction"`
	Completed        bool       `json:"completed"`
	Failed           bool       `json:"failed"`
	Deadline         *time.Time `json:"deadline"`
}

type RivalHacker struct {
	Name           string    `json:"name"`
	SkillLevel     int       `json:"skill_level"`
	Specialization string    `json:"specialization"`
	ActiveTargets  []string  `json:"active_targets"`
	LastSeen       time.Time `json:"last_seen"`
	Hostile        bool      `json:"hostile"`
}
