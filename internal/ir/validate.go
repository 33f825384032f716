package ir

import (
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// InputErrorKind categorizes instance validation failures.
type InputErrorKind string

const (
	KindSizeMismatch       InputErrorKind = "size_mismatch"
	KindEmptyName          InputErrorKind = "empty_name"
	KindDuplicateName      InputErrorKind = "duplicate_name"
	KindOverlap            InputErrorKind = "overlap"
	KindMissingPreferences InputErrorKind = "missing_preferences"
	KindUnknownParticipant InputErrorKind = "unknown_participant"
	KindInvalidRanking     InputErrorKind = "invalid_ranking"
	KindUnnormalizedName   InputErrorKind = "unnormalized_name"
)

// InputError describes one way an Instance violates the matching preconditions.
type InputError struct {
	Kind        InputErrorKind `json:"kind"`
	Participant string         `json:"participant,omitempty"`
	Message     string         `json:"message"`
}

// Error implements the error interface.
func (e InputError) Error() string {
	if e.Participant != "" {
		return fmt.Sprintf("%s: %s (participant=%s)", e.Kind, e.Message, e.Participant)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validate checks every precondition of the matcher and returns all
// violations found, in a deterministic order. An empty result means the
// instance is safe to match.
//
// Checked:
//   - |proposers| == |reviewers|
//   - names are non-empty, NFC-normalized, unique per side, and the sides
//     are disjoint
//   - every participant has a preference entry and no unknown names do
//   - each preference list is a permutation of the opposite set
func Validate(inst Instance) []InputError {
	var errs []InputError

	if len(inst.Proposers) != len(inst.Reviewers) {
		errs = append(errs, InputError{
			Kind:    KindSizeMismatch,
			Message: fmt.Sprintf("%d proposers but %d reviewers", len(inst.Proposers), len(inst.Reviewers)),
		})
	}

	proposers, perrs := nameSet(inst.Proposers, "proposer")
	errs = append(errs, perrs...)
	reviewers, rerrs := nameSet(inst.Reviewers, "reviewer")
	errs = append(errs, rerrs...)

	for _, name := range inst.Proposers {
		if reviewers[name] {
			errs = append(errs, InputError{
				Kind:        KindOverlap,
				Participant: name,
				Message:     "name appears as both proposer and reviewer",
			})
		}
	}

	errs = append(errs, checkRankings(inst.Proposers, inst.Preferences, reviewers)...)
	errs = append(errs, checkRankings(inst.Reviewers, inst.Preferences, proposers)...)

	var unknown []string
	for name := range inst.Preferences {
		if !proposers[name] && !reviewers[name] {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	for _, name := range unknown {
		errs = append(errs, InputError{
			Kind:        KindUnknownParticipant,
			Participant: name,
			Message:     "preference list given for a name that is neither proposer nor reviewer",
		})
	}

	return errs
}

// nameSet builds a membership set, reporting empty, unnormalized and
// duplicate names. Hashes and stored bodies are NFC, so an NFD name would
// collide with or drift from its stored form.
func nameSet(names []string, role string) (map[string]bool, []InputError) {
	var errs []InputError
	set := make(map[string]bool, len(names))
	for i, name := range names {
		if name == "" {
			errs = append(errs, InputError{
				Kind:    KindEmptyName,
				Message: fmt.Sprintf("%s[%d] has an empty name", role, i),
			})
			continue
		}
		if !norm.NFC.IsNormalString(name) {
			errs = append(errs, InputError{
				Kind:        KindUnnormalizedName,
				Participant: name,
				Message:     fmt.Sprintf("%s name is not in Unicode NFC form (use %q)", role, norm.NFC.String(name)),
			})
		}
		if set[name] {
			errs = append(errs, InputError{
				Kind:        KindDuplicateName,
				Participant: name,
				Message:     fmt.Sprintf("duplicate %s name", role),
			})
			continue
		}
		set[name] = true
	}
	return set, errs
}

// checkRankings verifies that each owner's list is a permutation of opposite.
// Only the first defect of each list is reported.
func checkRankings(owners []string, prefs map[string][]string, opposite map[string]bool) []InputError {
	var errs []InputError
	for _, owner := range owners {
		if owner == "" {
			continue
		}
		list, ok := prefs[owner]
		if !ok {
			errs = append(errs, InputError{
				Kind:        KindMissingPreferences,
				Participant: owner,
				Message:     "no preference list",
			})
			continue
		}
		if msg := rankingDefect(list, opposite); msg != "" {
			errs = append(errs, InputError{
				Kind:        KindInvalidRanking,
				Participant: owner,
				Message:     msg,
			})
		}
	}
	return errs
}

func rankingDefect(list []string, opposite map[string]bool) string {
	seen := make(map[string]bool, len(list))
	for i, name := range list {
		if !opposite[name] {
			return fmt.Sprintf("entry %d (%q) is not a member of the opposite set", i, name)
		}
		if seen[name] {
			return fmt.Sprintf("entry %d (%q) is ranked twice", i, name)
		}
		seen[name] = true
	}
	if len(seen) != len(opposite) {
		var missing []string
		for name := range opposite {
			if !seen[name] {
				missing = append(missing, name)
			}
		}
		slices.Sort(missing)
		return fmt.Sprintf("ranking is incomplete, missing %v", missing)
	}
	return ""
}
