package types

import "fmt"

// Skill selects one of the seven player skills.
type Skill int

const (
	SkillScanning Skill = iota
	SkillExploitation
	SkillStealth
	SkillCryptanalysis
	SkillSocialEngineering
	SkillReverseEngineering
	SkillBotnetManagement
)

const MaxSkillLevel = 10

var AllSkills = []Skill{
	SkillScanning, SkillExploitation, SkillStealth, SkillCryptanalysis,
	SkillSocialEngineering, SkillReverseEngineering, SkillBotnetManagement,
}

var skillNames = [...]string{
	"scanning", "exploitation", "stealth", "cryptanalysis",
	"social_engineering", "reverse_engineering", "botnet_management",
}

func (s Skill) String() string {
	if s < 0 || int(s) >= len(skillNames) {
		return fmt.Sprintf("skill(%d)", int(s))
	}
	return skillNames[s]
}

func ParseSkill(name string) (Skill, error) {
	for i, n := range skillNames {
		if n == name {
			return Skill(i), nil
		}
	}
	return 0, fmt.Errorf("unknown skill %q", name)
}

type Skills struct {
	Scanning           int `json:"scanning"`
	Exploitation       int `json:"exploitation"`
	Stealth            int `json:"stealth"`
	Cryptanalysis      int `json:"cryptanalysis"`
	SocialEngineering  int `json:"social_engineering"`
	ReverseEngineering int `json:"reverse_engineering"`
	BotnetManagement   int `json:"botnet_management"`
}

func StartingSkills() Skills {
	return Skills{1, 1, 1, 1, 1, 1, 1}
}

func (k *Skills) field(s Skill) *int {
	switch s {
	case SkillScanning:
		return &k.Scanning
	case SkillExploitation:
		return &k.Exploitation
	case SkillStealth:
		return &k.Stealth
	case SkillCryptanalysis:
		return &k.Cryptanalysis
	case SkillSocialEngineering:
		return &k.SocialEngineering
	case SkillReverseEngineering:
		return &k.ReverseEngineering
	case SkillBotnetManagement:
		return &k.BotnetManagement
	}
	return nil
}

func (k Skills) Get(s Skill) int {
	if p := k.field(s); p != nil {
		return *p
	}
	return 0
}

// Inc raises a skill by one. It reports false when the skill is
// unknown or already at MaxSkillLevel.
func (k *Skills) Inc(s Skill) bool {
	p := k.field(s)
	if p == nil || *p >= MaxSkillLevel {
		return false
	}
	*p++
	return true
}
