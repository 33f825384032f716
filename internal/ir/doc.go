// Package ir provides the canonical data model for gsmatch.
//
// This package contains type definitions, input validation and
// content-addressed hashing only. All other internal packages import ir;
// ir imports nothing internal.
//
// Key design constraints:
//   - Participants are plain string names; proposers and reviewers are disjoint
//   - Preference lists are ordered most-preferred first
//   - All JSON tags use snake_case
//   - Proposals are ordered by logical seq only, never wall-clock timestamps
package ir
