package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/gsmatch/internal/ir"
)

// Validation error codes, one per precondition family.
const (
	ErrCodeSizeMismatch       = "E101"
	ErrCodeEmptyName          = "E102"
	ErrCodeDuplicateName      = "E103"
	ErrCodeOverlap            = "E104"
	ErrCodeMissingPreferences = "E105"
	ErrCodeInvalidRanking     = "E106"
	ErrCodeUnknownParticipant = "E107"
	ErrCodeUnnormalizedName   = "E108"
)

var kindCodes = map[ir.InputErrorKind]string{
	ir.KindSizeMismatch:       ErrCodeSizeMismatch,
	ir.KindEmptyName:          ErrCodeEmptyName,
	ir.KindDuplicateName:      ErrCodeDuplicateName,
	ir.KindOverlap:            ErrCodeOverlap,
	ir.KindMissingPreferences: ErrCodeMissingPreferences,
	ir.KindInvalidRanking:     ErrCodeInvalidRanking,
	ir.KindUnknownParticipant: ErrCodeUnknownParticipant,
	ir.KindUnnormalizedName:   ErrCodeUnnormalizedName,
}

// ValidationError represents a precondition violation located in the
// source document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"` // 0 when the position is unknown
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the document's instance against every matching
// precondition and attaches a code and source line to each violation.
// Returns all errors found (not just the first).
func Validate(doc *Document) []ValidationError {
	var errs []ValidationError
	for _, ie := range ir.Validate(doc.Instance) {
		field := fieldFor(ie, doc.Instance)
		errs = append(errs, ValidationError{
			Field:   field,
			Message: ie.Error(),
			Code:    kindCodes[ie.Kind],
			Line:    lineFor(doc.Lines, field),
		})
	}
	return errs
}

// fieldFor picks the document field that an input error points at.
func fieldFor(ie ir.InputError, inst ir.Instance) string {
	switch ie.Kind {
	case ir.KindSizeMismatch, ir.KindOverlap:
		return "reviewers"
	case ir.KindEmptyName:
		if slices.Contains(inst.Proposers, "") {
			return "proposers"
		}
		return "reviewers"
	case ir.KindUnnormalizedName:
		if slices.Contains(inst.Proposers, ie.Participant) {
			return "proposers"
		}
		return "reviewers"
	case ir.KindDuplicateName:
		if count(inst.Proposers, ie.Participant) > 1 {
			return "proposers"
		}
		return "reviewers"
	case ir.KindMissingPreferences:
		return "preferences"
	default:
		return "preferences." + ie.Participant
	}
}

func count(names []string, name string) int {
	n := 0
	for _, v := range names {
		if v == name {
			n++
		}
	}
	return n
}

// lineFor falls back from "preferences.X" to "preferences" when the entry
// itself has no recorded position.
func lineFor(lines map[string]int, field string) int {
	if l, ok := lines[field]; ok {
		return l
	}
	if strings.HasPrefix(field, "preferences.") {
		return lines["preferences"]
	}
	return 0
}
