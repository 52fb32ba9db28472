package game

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownNode          = errors.New("unknown node")
	ErrUnknownVulnerability = errors.New("unknown vulnerability")
	ErrNoSession            = errors.New("no attack session in progress")
	ErrInvalidSelection     = errors.New("invalid selection")
)

// Reason is the machine readable cause of a rejected action.
type Reason string

const (
	ReasonMissingTool         Reason = "missing_tool"
	ReasonInsufficientCredits Reason = "insufficient_credits"
	ReasonInsufficientLevel   Reason = "insufficient_level"
	ReasonNotCompromised      Reason = "not_compromised"
	ReasonAlreadyCompromised  Reason = "already_compromised"
	ReasonAlreadyInstalled    Reason = "already_installed"
	ReasonAlreadyOwned        Reason = "already_owned"
	ReasonNoTargets           Reason = "no_targets"
	ReasonNoBotnets           Reason = "no_botnets"
	ReasonNoScanData          Reason = "no_scan_data"
	ReasonChallengePending    Reason = "challenge_pending"
	ReasonSkillChoicePending  Reason = "skill_choice_pending"
	ReasonTraced              Reason = "traced"
)

// Rejection reports an unmet precondition. A rejected action has not
// mutated any state.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("rejected (%s): %s", r.Reason, r.Message)
}

func reject(reason Reason, format string, args ...any) error {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// IsRejected reports whether err is a Rejection and returns it.
func IsRejected(err error) (*Rejection, bool) {
	var rj *Rejection
	if errors.As(err, &rj) {
		return rj, true
	}
	return nil, false
}
