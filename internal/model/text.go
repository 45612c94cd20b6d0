package model

import (
	"encoding/json"
	"strings"
)

const (
	sentinelPrefix = "[GEN: "
	sentinelSuffix = "]"
)

// Text is a narrative leaf of the proposal document: either Pending, still
// awaiting generation under a named slot, or Resolved final copy. The zero
// value is resolved empty text. A pending leaf marshals as its sentinel
// string so unresolved slots stay visible downstream.
type Text struct {
	pending bool
	slot    string
	value   string
}

// PendingText marks a leaf for generation under the named slot.
func PendingText(slot string) Text {
	return Text{pending: true, slot: slot}
}

// ResolvedText wraps final copy.
func ResolvedText(s string) Text {
	return Text{value: s}
}

// Pending returns the slot name and true while the leaf awaits generation.
func (t Text) Pending() (string, bool) {
	return t.slot, t.pending
}

// Resolve writes generated copy into the leaf. Each pending leaf is
// resolved at most once, by the narrative executor.
func (t *Text) Resolve(s string) {
	t.pending = false
	t.slot = ""
	t.value = s
}

// String returns the resolved copy, or the sentinel form while pending.
func (t Text) String() string {
	if t.pending {
		return sentinelPrefix + t.slot + sentinelSuffix
	}
	return t.value
}

// MarshalJSON renders the leaf as a plain JSON string.
func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON restores the pending case from sentinel strings, so a
// document survives a marshal round-trip with its slots intact.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if name, ok := ParseSentinel(s); ok {
		*t = PendingText(name)
		return nil
	}
	*t = ResolvedText(s)
	return nil
}

// ParseSentinel extracts the slot name from a sentinel string. The second
// return is false for ordinary text.
func ParseSentinel(s string) (string, bool) {
	if !strings.HasPrefix(s, sentinelPrefix) || !strings.HasSuffix(s, sentinelSuffix) {
		return "", false
	}
	name := s[len(sentinelPrefix) : len(s)-len(sentinelSuffix)]
	if name == "" || strings.ContainsAny(name, "[] ") {
		return "", false
	}
	return name, true
}
