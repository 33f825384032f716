package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainInstance = "gsmatch/instance/v1"
	DomainMatching = "gsmatch/matching/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InstanceHash computes the content-addressed ID of an instance.
//
// Proposer and reviewer declaration order is not part of the identity (they
// are sets); preference order is. Two instances that differ only in the order
// their participants were listed therefore share a hash and, by the
// schedule-invariance of deferred acceptance, the same matching.
func InstanceHash(inst Instance) (string, error) {
	proposers := slices.Clone(inst.Proposers)
	slices.Sort(proposers)
	reviewers := slices.Clone(inst.Reviewers)
	slices.Sort(reviewers)

	prefs := inst.Preferences
	if prefs == nil {
		prefs = map[string][]string{}
	}

	canonical, err := MarshalCanonical(map[string]any{
		"proposers":   proposers,
		"reviewers":   reviewers,
		"preferences": prefs,
	})
	if err != nil {
		return "", fmt.Errorf("InstanceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInstance, canonical), nil
}

// MatchingHash computes the content-addressed ID of a matching's pairs.
// Only the pairing is hashed; proposal count and schedule are not, so every
// schedule over the same instance yields the same hash.
func MatchingHash(m Matching) (string, error) {
	pairs := make(map[string]string, len(m.Pairs))
	for _, p := range m.Pairs {
		pairs[p.Proposer] = p.Reviewer
	}

	canonical, err := MarshalCanonical(map[string]any{"pairs": pairs})
	if err != nil {
		return "", fmt.Errorf("MatchingHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainMatching, canonical), nil
}

// MustInstanceHash is like InstanceHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustInstanceHash(inst Instance) string {
	h, err := InstanceHash(inst)
	if err != nil {
		panic(err)
	}
	return h
}

// MustMatchingHash is like MatchingHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustMatchingHash(m Matching) string {
	h, err := MatchingHash(m)
	if err != nil {
		panic(err)
	}
	return h
}
