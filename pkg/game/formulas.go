package game

import (
	"time"

	"netrunner/pkg/types"
)

// --- Formulas ---
// Pure functions of player and node state. The console uses the same
// functions to preview odds, so they never draw from the RNG.

func clamp(lo, hi, v float64) float64 { return max(lo, min(hi, v)) }

// SuccessRate is the chance an exploit against v lands.
func SuccessRate(p *types.PlayerState, v types.Vulnerability) float64 {
	raw := v.SuccessRateBase +
		float64(p.Skills.Exploitation)*SkillRateBonus +
		p.ToolBonus(types.ToolExploitFramework)*ToolRateBonus +
		(p.HardwareBonus(types.SlotCPU)-1)*CPURateWeight +
		(p.HardwareBonus(types.SlotRAM)-1)*RAMRateWeight
	raw *= p.EventMultiplier(types.EventGlobalPatch, types.EventZeroDayLeak)
	return clamp(MinSuccessRate, MaxSuccessRate, raw-float64(v.PatchLevel)*PatchPenalty)
}

// StealthDiscount is the fraction of trace accrual the player avoids.
func StealthDiscount(p *types.PlayerState) float64 {
	d := float64(p.Skills.Stealth)*StealthSkillBonus +
		float64(p.ProxyChains)*ProxyChainBonus +
		float64(len(p.BouncedNodes))*BounceNodeBonus
	return min(MaxStealth, d)
}

// TraceIncrease is the trace a node accrues for one action of an attack
// session.
func TraceIncrease(p *types.PlayerState, n *types.Node) float64 {
	inc := n.TraceSpeed / p.HardwareBonus(types.SlotCooling)
	inc *= p.EventMultiplier(types.EventPoliceCrackdown, types.EventNetworkWorm)
	if n.HasSIEM {
		inc *= SIEMTraceMult
	}
	return inc * (1 - StealthDiscount(p))
}

func DiscoveryChance(p *types.PlayerState) float64 {
	return 0.3 + float64(p.Skills.Scanning)*0.1 + p.ToolBonus(types.ToolScanner)*0.1
}

// HoneypotChance is the chance a scan trips h.
func HoneypotChance(p *types.PlayerState, h types.Honeypot) float64 {
	return h.DetectionChance * (1 - float64(p.Skills.Stealth)*0.05)
}

// ExploitDamage scales a raw damage roll by exploitation skill and CPU.
func ExploitDamage(p *types.PlayerState, roll int) int {
	return int(float64(roll) * (1 + float64(p.Skills.Exploitation)*0.1) * p.HardwareBonus(types.SlotCPU))
}

// ChallengeTimeout is how long the player has to answer a bypass
// challenge for a vulnerability of the given discovery difficulty.
func ChallengeTimeout(p *types.PlayerState, difficulty float64) time.Duration {
	secs := (10 - difficulty*5) * p.HardwareBonus(types.SlotRAM)
	return time.Duration(secs * float64(time.Second))
}

func BackdoorChance(p *types.PlayerState) float64 {
	return 0.7 + float64(p.Skills.ReverseEngineering)*0.05 + p.ToolBonus(types.ToolRootkit)*0.1
}

// TraceClearAmount is how much trace one log wipe removes.
func TraceClearAmount(p *types.PlayerState) float64 {
	return 15 + float64(p.Skills.Stealth)*5 + p.ToolBonus(types.ToolRootkit)*10
}

func PhishChance(p *types.PlayerState, e types.Employee) float64 {
	return e.PhishingSusceptibility + float64(p.Skills.SocialEngineering)*PhishingSkillBonus
}

func CrackChance(p *types.PlayerState, d types.EncryptedData) float64 {
	return 0.4 + float64(p.Skills.Cryptanalysis)*0.08 - d.Difficulty*0.3 + p.ToolBonus(types.ToolCryptanalysis)*0.15
}

func RivalHackChance(p *types.PlayerState, r *types.RivalHacker) float64 {
	return RivalHackBase + float64(p.Skills.Exploitation)*SkillRateBonus - float64(r.SkillLevel)*RivalSkillPenalty
}

func NodeDiscoveryChance(p *types.PlayerState) float64 {
	return 0.5 + float64(p.Skills.Scanning)*0.1
}

// ProxyCost is the price of the next proxy chain.
func ProxyCost(p *types.PlayerState) int {
	return ProxyBaseCost + p.ProxyChains*ProxyCostIncrement
}

func ExpansionCost(b types.Botnet) int { return b.Size * 10 }

func ddosPower(size int, quality float64) int { return int(float64(size) * quality * 0.5) }
