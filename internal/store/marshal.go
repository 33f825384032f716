package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/gsmatch/internal/ir"
)

// marshalInstance converts an instance to canonical JSON TEXT for storage.
// Participants keep their declaration order so replays list pairs the same way.
func marshalInstance(inst ir.Instance) (string, error) {
	prefs := inst.Preferences
	if prefs == nil {
		prefs = map[string][]string{}
	}
	data, err := ir.MarshalCanonical(map[string]any{
		"proposers":   nonNil(inst.Proposers),
		"reviewers":   nonNil(inst.Reviewers),
		"preferences": prefs,
	})
	if err != nil {
		return "", fmt.Errorf("marshal instance: %w", err)
	}
	return string(data), nil
}

// unmarshalInstance parses an instance body written by marshalInstance.
func unmarshalInstance(body string) (ir.Instance, error) {
	var inst ir.Instance
	if err := json.Unmarshal([]byte(body), &inst); err != nil {
		return ir.Instance{}, fmt.Errorf("unmarshal instance: %w", err)
	}
	if inst.Proposers == nil {
		inst.Proposers = []string{}
	}
	if inst.Reviewers == nil {
		inst.Reviewers = []string{}
	}
	if inst.Preferences == nil {
		inst.Preferences = map[string][]string{}
	}
	return inst, nil
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
