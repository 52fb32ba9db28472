package types

import "fmt"

// Every enumerated value persists as its string tag. The tags are the
// stable contract; the order of the constants below carries no meaning.

type NetworkType string

const (
	NetworkCorporate      NetworkType = "corporate"
	NetworkGovernment     NetworkType = "government"
	NetworkFinancial      NetworkType = "financial"
	NetworkResearch       NetworkType = "research"
	NetworkCriminal       NetworkType = "criminal"
	NetworkMilitary       NetworkType = "military"
	NetworkInfrastructure NetworkType = "infrastructure"
)

var NetworkTypes = []NetworkType{
	NetworkCorporate, NetworkGovernment, NetworkFinancial, NetworkResearch,
	NetworkCriminal, NetworkMilitary, NetworkInfrastructure,
}

type ExploitType string

const (
	ExploitSQLInjection        ExploitType = "sql_injection"
	ExploitBufferOverflow      ExploitType = "buffer_overflow"
	ExploitXSS                 ExploitType = "cross_site_scripting"
	ExploitRCE                 ExploitType = "remote_code_execution"
	ExploitPrivilegeEscalation ExploitType = "privilege_escalation"
	ExploitZeroDay             ExploitType = "zero_day"
	ExploitSocialEngineering   ExploitType = "social_engineering"
	ExploitManInTheMiddle      ExploitType = "man_in_the_middle"
	ExploitPhishing            ExploitType = "phishing"
	ExploitSupplyChain         ExploitType = "supply_chain"
	ExploitCryptographic       ExploitType = "cryptographic_weakness"
)

var ExploitTypes = []ExploitType{
	ExploitSQLInjection, ExploitBufferOverflow, ExploitXSS, ExploitRCE,
	ExploitPrivilegeEscalation, ExploitZeroDay, ExploitSocialEngineering,
	ExploitManInTheMiddle, ExploitPhishing, ExploitSupplyChain, ExploitCryptographic,
}

type ToolType string

const (
	ToolScanner          ToolType = "scanner"
	ToolExploitFramework ToolType = "exploit_framework"
	ToolProxyChain       ToolType = "proxy_chain"
	ToolCryptanalysis    ToolType = "cryptanalysis"
	ToolBotnetController ToolType = "botnet_controller"
	ToolKeylogger        ToolType = "keylogger"
	ToolRootkit          ToolType = "rootkit"
)

var ToolTypes = []ToolType{
	ToolScanner, ToolExploitFramework, ToolProxyChain, ToolCryptanalysis,
	ToolBotnetController, ToolKeylogger, ToolRootkit,
}

type EncryptionType string

const (
	EncryptionAES128   EncryptionType = "aes_128"
	EncryptionAES256   EncryptionType = "aes_256"
	EncryptionRSA1024  EncryptionType = "rsa_1024"
	EncryptionRSA2048  EncryptionType = "rsa_2048"
	EncryptionRSA4096  EncryptionType = "rsa_4096"
	EncryptionWeakHash EncryptionType = "weak_hash"
)

var EncryptionTypes = []EncryptionType{
	EncryptionAES128, EncryptionAES256, EncryptionRSA1024,
	EncryptionRSA2048, EncryptionRSA4096, EncryptionWeakHash,
}

type HardwareType string

const (
	HardwareCPU     HardwareType = "processor"
	HardwareRAM     HardwareType = "memory"
	HardwareStorage HardwareType = "storage"
	HardwareCooling HardwareType = "cooling"
)

var HardwareTypes = []HardwareType{HardwareCPU, HardwareRAM, HardwareStorage, HardwareCooling}

// Slot is the key a component occupies in PlayerState.Hardware.
func (h HardwareType) Slot() string {
	switch h {
	case HardwareCPU:
		return SlotCPU
	case HardwareRAM:
		return SlotRAM
	case HardwareStorage:
		return SlotStorage
	case HardwareCooling:
		return SlotCooling
	}
	return string(h)
}

// Hardware slot keys.
const (
	SlotCPU     = "CPU"
	SlotRAM     = "RAM"
	SlotStorage = "Storage"
	SlotCooling = "Cooling"
)

type EventType string

const (
	EventGlobalPatch     EventType = "global_patch"
	EventPoliceCrackdown EventType = "police_crackdown"
	EventZeroDayLeak     EventType = "zero_day_leak"
	EventNetworkWorm     EventType = "network_worm"
)

var EventTypes = []EventType{EventGlobalPatch, EventPoliceCrackdown, EventZeroDayLeak, EventNetworkWorm}

type Segment string

const (
	SegmentDMZ      Segment = "DMZ"
	SegmentInternal Segment = "INTERNAL"
	SegmentSecure   Segment = "SECURE"
)

var Segments = []Segment{SegmentDMZ, SegmentInternal, SegmentSecure}

type ServiceState string

const (
	StateOpen     ServiceState = "open"
	StateFiltered ServiceState = "filtered"
	StateClosed   ServiceState = "closed"
)

var ServiceStates = []ServiceState{StateOpen, StateFiltered, StateClosed}

type Objective string

const (
	ObjectiveStealData         Objective = "steal_data"
	ObjectiveInstallBackdoor   Objective = "install_backdoor"
	ObjectiveSabotage          Objective = "sabotage"
	ObjectiveReconnaissance    Objective = "reconnaissance"
	ObjectiveDestroyEvidence   Objective = "destroy_evidence"
	ObjectivePlantEvidence     Objective = "plant_evidence"
	ObjectiveExfiltrateStaff   Objective = "exfiltrate_employee_data"
)

var Objectives = []Objective{
	ObjectiveStealData, ObjectiveInstallBackdoor, ObjectiveSabotage, ObjectiveReconnaissance,
	ObjectiveDestroyEvidence, ObjectivePlantEvidence, ObjectiveExfiltrateStaff,
}

// CompletesOnCompromise reports whether taking the target node down
// fulfils the objective.
func (o Objective) CompletesOnCompromise() bool {
	switch o {
	case ObjectiveStealData, ObjectiveInstallBackdoor, ObjectiveSabotage:
		return true
	}
	return false
}

func parseTag[T ~string](kind, s string, valid []T) (T, error) {
	for _, v := range valid {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", kind, s)
}

func (t *NetworkType) UnmarshalText(b []byte) (err error) {
	*t, err = parseTag("network type", string(b), NetworkTypes)
	return err
}

func (t *ExploitType) UnmarshalText(b []byte) (err error) {
	*t, err = parseTag("exploit type", string(b), ExploitTypes)
	return err
}

func (t *ToolType) UnmarshalText(b []byte) (err error) {
	*t, err = parseTag("tool type", string(b), ToolTypes)
	return err
}

func (t *EncryptionType) UnmarshalText(b []byte) (err error) {
	*t, err = parseTag("encryption type", string(b), EncryptionTypes)
	return err
}

func (t *HardwareType) UnmarshalText(b []byte) (err error) {
	*t, err = parseTag("hardware type", string(b), HardwareTypes)
	return err
}

func (t *EventType) UnmarshalText(b []byte) (err error) {
	*t, err = parseTag("event type", string(b), EventTypes)
	return err
}

func (t *Segment) UnmarshalText(b []byte) (err error) {
	*t, err = parseTag("segment", string(b), Segments)
	return err
}

func (t *ServiceState) UnmarshalText(b []byte) (err error) {
	*t, err = parseTag("service state", string(b), ServiceStates)
	return err
}

func (t *Objective) UnmarshalText(b []byte) (err error) {
	*t, err = parseTag("objective", string(b), Objectives)
	return err
}
