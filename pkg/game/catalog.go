package game

import "netrunner/pkg/types"

// ExploitTemplate is the static description a generated Vulnerability is
// jittered from.
type ExploitTemplate struct {
	Name                string
	Type                types.ExploitType
	Severity            float64
	PatchLevel          int
	DiscoveryDifficulty float64
	Damage              types.Range
	TraceCost           int
	SuccessRate         float64
	RequiresTool        types.ToolType
}

type ServiceTemplate struct {
	Name    string
	Version string
	Port    int
}

// NodeQuota controls how many nodes of one category are generated and
// their security band.
type NodeQuota struct {
	Type     types.NetworkType
	Count    types.Range
	Security types.Range
}

type HardwareBase struct {
	Name        string
	Type        types.HardwareType
	Bonus       float64
	Cost        int
	Description string
}

type EventTemplate struct {
	Name        string
	Type        types.EventType
	Duration    types.Range
	Multiplier  float64
	Description string
}

type ObjectiveTemplate struct {
	Title       string // format with target name
	Description string // format with target name
	RewardMult  float64
}

// Naming holds the word lists used to name organisations.
type Naming struct {
	CorpPrefixes  []string
	CorpSuffixes  []string
	GovPrefixes   []string
	GovBodies     []string
	MilitaryUnits []string
	DarkSites     []string
	InfraKinds    []string
	InfraGrids    []string
}

// Catalog is the immutable static data every generator draws from. It is
// passed into the generators rather than read from package state, so tests
// can shrink or replace any table.
type Catalog struct {
	Exploits         []ExploitTemplate
	Services         []ServiceTemplate
	Quotas           []NodeQuota
	Naming           Naming
	FirstNames       []string
	LastNames        []string
	Departments      []string
	HoneypotServices []string
	Tools            []types.Tool
	Hardware         []HardwareBase
	StarterKit       map[string]types.HardwareComponent
	ExploitNames     []string
	Events           []EventTemplate
	RivalHandles     []string
	Specializations  []string
	Contractors      []string
	Objectives       map[types.Objective]ObjectiveTemplate
	Factions         []types.Faction
	SocialApps       []string
}

// DefaultCatalog returns a fresh copy of the built-in tables.
func DefaultCatalog() *Catalog {
	r := func(lo, hi int) types.Range { return types.Range{Min: lo, Max: hi} }
	return &Catalog{
		Exploits: []ExploitTemplate{
			{"SQL Injection in login form", types.ExploitSQLInjection, 0.7, 2, 0.3, r(15, 30), 8, 0.65, ""},
			{"Buffer overflow in packet handler", types.ExploitBufferOverflow, 0.9, 5, 0.7, r(25, 50), 15, 0.45, types.ToolExploitFramework},
			{"Reflected XSS in search", types.ExploitXSS, 0.5, 1, 0.2, r(10, 20), 5, 0.75, ""},
			{"Remote code execution via deserialization", types.ExploitRCE, 0.95, 7, 0.8, r(40, 80), 20, 0.35, types.ToolExploitFramework},
			{"Privilege escalation via SUID binary", types.ExploitPrivilegeEscalation, 0.8, 4, 0.6, r(20, 40), 12, 0.55, ""},
			{"Unpatched zero-day exploit", types.ExploitZeroDay, 1.0, 10, 0.9, r(50, 100), 25, 0.25, types.ToolExploitFramework},
			{"Weak credentials susceptible to brute force", types.ExploitSocialEngineering, 0.6, 1, 0.1, r(15, 25), 10, 0.70, ""},
			{"SSL stripping vulnerability", types.ExploitManInTheMiddle, 0.75, 3, 0.5, r(18, 35), 14, 0.50, types.ToolProxyChain},
			{"Phishing vector via email", types.ExploitPhishing, 0.65, 2, 0.4, r(20, 30), 7, 0.60, ""},
			{"Supply chain backdoor", types.ExploitSupplyChain, 0.85, 6, 0.75, r(35, 70), 18, 0.40, ""},
			{"Weak cryptographic implementation", types.ExploitCryptographic, 0.7, 4, 0.6, r(25, 45), 13, 0.50, types.ToolCryptanalysis},
		},
		Services: []ServiceTemplate{
			{"Apache HTTP Server", "2.4.41", 80},
			{"nginx", "1.18.0", 80},
			{"OpenSSH", "7.9p1", 22},
			{"MySQL", "5.7.31", 3306},
			{"PostgreSQL", "12.4", 5432},
			{"ProFTPD", "1.3.6", 21},
			{"Microsoft IIS", "10.0", 80},
			{"Tomcat", "9.0.37", 8080},
			{"Redis", "6.0.9", 6379},
			{"MongoDB", "4.4.1", 27017},
			{"Elasticsearch", "7.9.2", 9200},
			{"Exchange Server", "2019", 25},
			{"Active Directory", "2019", 389},
			{"VPN Gateway", "5.6", 1194},
		},
		Quotas: []NodeQuota{
			{types.NetworkCorporate, r(20, 30), r(1, 4)},
			{types.NetworkFinancial, r(12, 20), r(3, 6)},
			{types.NetworkGovernment, r(10, 18), r(4, 7)},
			{types.NetworkResearch, r(8, 15), r(2, 5)},
			{types.NetworkCriminal, r(6, 12), r(5, 8)},
			{types.NetworkMilitary, r(4, 8), r(6, 10)},
			{types.NetworkInfrastructure, r(5, 10), r(3, 6)},
		},
		Naming: Naming{
			CorpPrefixes: []string{"TechCorp", "DataSys", "SecureNet", "GlobalTech", "CyberDyne",
				"NexGen", "Quantum", "Infinity", "Apex", "Zenith", "Vertex", "Axiom"},
			CorpSuffixes: []string{"Industries", "Systems", "Solutions", "Enterprises", "Group",
				"Corporation", "Technologies", "Networks", "Services", "Digital"},
			GovPrefixes:   []string{"Federal", "State", "National", "Regional"},
			GovBodies:     []string{"Bureau", "Agency", "Department", "Office"},
			MilitaryUnits: []string{"NORTHCOM", "CYBERCOM", "STRATCOM", "Defense", "SIGINT"},
			DarkSites:     []string{"Net", "Web", "Site", "Market"},
			InfraKinds:    []string{"Power", "Water", "Telecom", "Transit"},
			InfraGrids:    []string{"Grid", "Network", "System"},
		},
		FirstNames: []string{"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
			"William", "Barbara", "David", "Elizabeth", "Richard", "Susan", "Joseph", "Jessica"},
		LastNames: []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
			"Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Thomas"},
		Departments:      []string{"IT", "HR", "Finance", "Operations", "Marketing", "R&D", "Legal", "Executive"},
		HoneypotServices: []string{"FTP", "Telnet", "SMB", "RDP"},
		Tools: []types.Tool{
			{Name: "PortScanner Pro", ToolType: types.ToolScanner, Cost: 500, Effectiveness: 1.5, Description: "Advanced network scanner with stealth mode", LevelRequirement: 1},
			{Name: "MassiveMap", ToolType: types.ToolScanner, Cost: 1500, Effectiveness: 2.0, Description: "Ultra-fast network mapper", LevelRequirement: 3, StealthPenalty: 0.1},
			{Name: "ExploitKit v3", ToolType: types.ToolExploitFramework, Cost: 2000, Effectiveness: 1.8, Description: "Automated exploitation framework", LevelRequirement: 2, StealthPenalty: 0.2},
			{Name: "MetaSploit Pro", ToolType: types.ToolExploitFramework, Cost: 5000, Effectiveness: 2.5, Description: "Professional penetration testing suite", LevelRequirement: 5, StealthPenalty: 0.15},
			{Name: "ProxyChain Advanced", ToolType: types.ToolProxyChain, Cost: 1000, Effectiveness: 1.0, Description: "Multi-hop proxy network", LevelRequirement: 2, StealthPenalty: -0.3},
			{Name: "TOR Router Pro", ToolType: types.ToolProxyChain, Cost: 3000, Effectiveness: 1.0, Description: "Enhanced anonymity routing", LevelRequirement: 4, StealthPenalty: -0.5},
			{Name: "CryptoBreaker", ToolType: types.ToolCryptanalysis, Cost: 4000, Effectiveness: 2.0, Description: "Advanced cryptanalysis tool", LevelRequirement: 4, StealthPenalty: 0.1},
			{Name: "QuantumCrack", ToolType: types.ToolCryptanalysis, Cost: 10000, Effectiveness: 3.0, Description: "Quantum-assisted decryption", LevelRequirement: 7, StealthPenalty: 0.2},
			{Name: "BotCommander", ToolType: types.ToolBotnetController, Cost: 3000, Effectiveness: 1.5, Description: "Manage distributed botnets", LevelRequirement: 3, StealthPenalty: 0.3},
			{Name: "StealthLogger", ToolType: types.ToolKeylogger, Cost: 1500, Effectiveness: 1.3, Description: "Undetectable keylogging software", LevelRequirement: 2},
			{Name: "DeepRootkit", ToolType: types.ToolRootkit, Cost: 5000, Effectiveness: 2.0, Description: "Persistent system-level access", LevelRequirement: 5, StealthPenalty: 0.1},
		},
		Hardware: []HardwareBase{
			{"Core-i7 Hacker Edition", types.HardwareCPU, 2.0, 5000, "High-performance CPU for faster exploit execution"},
			{"Quantum Processor V1", types.HardwareCPU, 4.0, 25000, "Experimental quantum chip"},
			{"32GB DDR5 RAM", types.HardwareRAM, 1.5, 3000, "Increases processing time window in bypass challenges"},
			{"64GB DDR5 X-Pro", types.HardwareRAM, 2.2, 8000, "Professional grade memory"},
			{"2TB NVMe SSD", types.HardwareStorage, 1.5, 4000, "Faster data extraction and storage"},
			{"Liquid Cooling System", types.HardwareCooling, 1.3, 3500, "Reduces trace accumulation speed"},
			{"Nitro Cooling Rig", types.HardwareCooling, 2.0, 12000, "Extreme cooling for elite hackers"},
		},
		StarterKit: map[string]types.HardwareComponent{
			types.SlotCPU:     {Name: "Basic Processor", HType: types.HardwareCPU, Level: 1, Bonus: 1.0, Description: "Standard 4-core CPU"},
			types.SlotRAM:     {Name: "8GB Memory", HType: types.HardwareRAM, Level: 1, Bonus: 1.0, Description: "Standard DDR3 RAM"},
			types.SlotStorage: {Name: "500GB HDD", HType: types.HardwareStorage, Level: 1, Bonus: 1.0, Description: "Mechanical hard drive"},
			types.SlotCooling: {Name: "Stock Cooler", HType: types.HardwareCooling, Level: 1, Bonus: 1.0, Description: "Basic air cooling"},
		},
		ExploitNames: []string{"EternalBlue", "BlueKeep", "Heartbleed", "Shellshock", "Dirty COW",
			"KRACK", "Meltdown", "Spectre", "PrintNightmare", "Log4Shell",
			"ProxyLogon", "ProxyShell", "ZeroLogon", "SolarFlare", "Ghost"},
		Events: []EventTemplate{
			{"Global Security Patch", types.EventGlobalPatch, r(12, 48), 0.7,
				"Major software vendors released critical patches, reducing exploit effectiveness."},
			{"Police Crackdown", types.EventPoliceCrackdown, r(24, 72), 1.5,
				"Law enforcement is actively hunting hackers. Trace accumulation increased."},
			{"Zero-Day Leak", types.EventZeroDayLeak, r(6, 24), 1.3,
				"New vulnerabilities leaked online. Exploitation effectiveness increased."},
			{"Network Worm Outbreak", types.EventNetworkWorm, r(12, 36), 0.8,
				"A network worm is causing chaos. Security teams are distracted."},
		},
		RivalHandles: []string{"DarkPhantom", "ZeroCool", "CrashOverride", "AcidBurn", "ThePlague",
			"Cypher", "Neo", "Morpheus", "Trinity", "Ghost", "Reaper", "Viper",
			"Shadow", "Nexus", "Void", "Raven", "Cipher", "Spectre", "Wraith"},
		Specializations: []string{"Exploitation", "Social Engineering", "Cryptanalysis",
			"Network Infiltration", "Botnet Operations"},
		Contractors: []string{"Anonymous Client", "Dark Web Broker", "Corporate Rival",
			"Intelligence Agency", "Hacktivist Group", "Crime Syndicate",
			"Whistleblower", "Competitor Corporation", "Foreign Government"},
		Objectives: map[types.Objective]ObjectiveTemplate{
			types.ObjectiveStealData: {"Data Extraction: %s",
				"Extract sensitive data from %s servers. Payment on delivery.", 1.2},
			types.ObjectiveInstallBackdoor: {"Persistent Access: %s",
				"Establish persistent access to %s infrastructure for future operations.", 1.5},
			types.ObjectiveSabotage: {"System Disruption: %s",
				"Disrupt operations at %s. Must appear like system failure.", 1.3},
			types.ObjectiveReconnaissance: {"Network Mapping: %s",
				"Map internal network structure of %s. Stealth is priority.", 0.8},
			types.ObjectiveDestroyEvidence: {"Evidence Destruction: %s",
				"Permanently delete specific files from %s without detection.", 1.6},
			types.ObjectivePlantEvidence: {"Frame Job: %s",
				"Infiltrate %s systems and plant incriminating evidence to frame the target.", 1.7},
			types.ObjectiveExfiltrateStaff: {"HR Breach: %s",
				"Access HR systems of %s and exfiltrate the complete employee database.", 1.4},
		},
		Factions: []types.Faction{
			{Name: "White Hat Alliance"},
			{Name: "Black Hat Syndicate"},
			{Name: "Grey Market Traders"},
			{Name: "Corporate Security", Reputation: -20, Hostile: true},
			{Name: "Law Enforcement", Reputation: -50, Hostile: true},
		},
		SocialApps: []string{"Slack", "Jira", "Salesforce"},
	}
}
