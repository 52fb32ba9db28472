package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Saves written before the sealed format store timestamps without a zone
// offset and damage ranges as two-element arrays. The decoders below accept
// both shapes; encoding always uses the current one.

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp reads an RFC 3339 timestamp, or one with no offset, which
// is taken as UTC. Fractional seconds are optional in both.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

type timestamp time.Time

func (t *timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = timestamp(parsed)
	return nil
}

func (t *timestamp) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := time.Time(*t)
	return &v
}

func (r *Range) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var pair []int
		if err := json.Unmarshal(b, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("range needs 2 bounds, got %d", len(pair))
		}
		r.Min, r.Max = pair[0], pair[1]
		return nil
	}
	type plain Range
	return json.Unmarshal(b, (*plain)(r))
}

func (n *Node) UnmarshalJSON(b []byte) error {
	type plain Node
	aux := struct {
		*plain
		LastAttackTime *timestamp `json:"last_attack_time"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	n.LastAttackTime = aux.LastAttackTime.ptr()
	return nil
}

func (p *PlayerState) UnmarshalJSON(b []byte) error {
	type plain PlayerState
	aux := struct {
		*plain
		GameTime timestamp `json:"game_time"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.GameTime = time.Time(aux.GameTime)
	return nil
}

func (c *Contract) UnmarshalJSON(b []byte) error {
	type plain Contract
	aux := struct {
		*plain
		Deadline *timestamp `json:"deadline"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.Deadline = aux.Deadline.ptr()
	return nil
}

func (r *RivalHacker) UnmarshalJSON(b []byte) error {
	type plain RivalHacker
	aux := struct {
		*plain
		LastSeen timestamp `json:"last_seen"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.LastSeen = time.Time(aux.LastSeen)
	return nil
}
