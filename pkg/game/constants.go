package game

// --- Balance Constants ---

const (
	StartingCredits = 1000
	StartingLevel   = 1

	ExpPerLevel       = 100 // exp needed = level * this
	ExpScanMult       = 5   // * security rating
	ExpCompromiseMult = 50
	ExpBackdoorMult   = 20

	MinSuccessRate   = 0.05
	MaxSuccessRate   = 0.98
	SkillRateBonus   = 0.05
	ToolRateBonus    = 0.1
	PatchPenalty     = 0.03
	CPURateWeight    = 0.2
	RAMRateWeight    = 0.1
	CriticalSeverity = 0.7 // above this a bypass challenge is required

	TraceThreshold        = 100
	TraceHeat             = 15
	TraceIdentityHeat     = 10
	TracePenaltyMin       = 100
	TracePenaltyMax       = 500
	InvestigationTrigger  = 50 // identity heat must exceed this
	InvestigationChance   = 0.3
	InvestigationStepMin  = 0.1
	InvestigationStepMax  = 0.5
	InvestigationLoss     = 0.7
	InvestigationRepLoss  = 100
	InvestigationToolLoss = 3
	InvestigationHeat     = 20

	StealthSkillBonus = 0.05
	ProxyChainBonus   = 0.1
	BounceNodeBonus   = 0.12
	MaxStealth        = 0.9
	SIEMTraceMult     = 1.5

	DDoSTrace = 25
	DDoSHeat  = 3
	DDoSExp   = 15

	BotnetCost            = 2000
	BotnetSizeMin         = 50
	BotnetSizeMax         = 200
	BotnetSizePerSkill    = 20
	BotnetBaseQuality     = 0.5
	BotnetQualityPerSkill = 0.05

	ProxyBaseCost      = 1000
	ProxyCostIncrement = 500

	PhishingSkillBonus   = 0.08
	PhishingSuccessTrace = 5
	PhishingFailTrace    = 15
	PhishingFailHeat     = 2

	LaunderCost                = 2000
	LaunderIdentityReduction   = 15
	LaunderInvestigationReduce = 5

	SellDataRep  = 5
	SellDataHeat = 3

	RivalActivityChance   = 0.1
	RivalCompromiseChance = 0.05
	RivalHackBase         = 0.3
	RivalSkillPenalty     = 0.04
	RivalRewardPerSkill   = 500
	RivalHackFailHeat     = 10

	AdminPatchChance    = 0.05
	AdminActivateTrace  = 40
	AdminActivateChance = 0.3
	AdminTraceMult      = 1.3
	AdminResponseTrace  = 30
	AdminResponseChance = 0.3
	AdminResponseMult   = 1.5
	AdminExploitPatch   = 0.2

	HoneypotMinSecurity = 5
	HoneypotHeat        = 5

	ChallengeTrace    = 10
	BackdoorFailTrace = 20

	InitialContracts   = 5
	MinActiveContracts = 3

	MaxActiveEvents    = 2
	EventTriggerChance = 0.05

	EventLogKeep = 100
)
