// Package compiler turns instance documents (CUE or YAML) into ir.Instance
// values and reports precondition violations against their source lines.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/gsmatch/internal/ir"
)

// Source formats.
const (
	FormatCUE  = "cue"
	FormatYAML = "yaml"
)

// Document is a compiled instance plus enough source information to point
// validation errors at the offending line.
type Document struct {
	Path     string
	Format   string
	Instance ir.Instance

	// Lines maps field paths ("proposers", "reviewers", "preferences",
	// "preferences.<name>") to 1-based source lines. Missing keys mean the
	// position is unknown.
	Lines map[string]int
}

// LoadFile reads and compiles an instance document, choosing the format
// from the file extension (.cue, .yaml, .yml).
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instance file: %w", err)
	}

	var doc *Document
	switch ext := filepath.Ext(path); ext {
	case ".cue":
		doc, err = CompileCUE(data, path)
	case ".yaml", ".yml":
		doc, err = CompileYAML(data)
	default:
		return nil, &CompileError{Field: "file", Message: fmt.Sprintf("unsupported instance format %q (want .cue, .yaml or .yml)", ext)}
	}
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// CompileCUE compiles CUE source. The instance may sit at the top level or
// under an `instance` field:
//
//	instance: {
//		proposers: ["A", "B"]
//		reviewers: ["X", "Y"]
//		preferences: {
//			A: ["X", "Y"]
//			...
//		}
//	}
func CompileCUE(src []byte, filename string) (*Document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if wrapped := v.LookupPath(cue.ParsePath("instance")); wrapped.Exists() {
		v = wrapped
	}
	return CompileInstance(v)
}

// CompileInstance parses a CUE value into a Document.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
func CompileInstance(v cue.Value) (*Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := &Document{
		Format: FormatCUE,
		Lines:  make(map[string]int),
	}

	var err error
	doc.Instance.Proposers, err = parseNameList(v, "proposers", doc.Lines)
	if err != nil {
		return nil, err
	}
	doc.Instance.Reviewers, err = parseNameList(v, "reviewers", doc.Lines)
	if err != nil {
		return nil, err
	}

	prefsVal := v.LookupPath(cue.ParsePath("preferences"))
	if !prefsVal.Exists() {
		return nil, &CompileError{
			Field:   "preferences",
			Message: "preferences is required",
			Pos:     v.Pos(),
		}
	}
	recordLine(doc.Lines, "preferences", prefsVal.Pos())

	iter, err := prefsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	doc.Instance.Preferences = make(map[string][]string)
	for iter.Next() {
		name := iter.Label()
		list, err := parseStrings(iter.Value(), "preferences."+name)
		if err != nil {
			return nil, err
		}
		doc.Instance.Preferences[name] = list
		recordLine(doc.Lines, "preferences."+name, iter.Value().Pos())
	}

	return doc, nil
}

// parseNameList reads a required list of participant names.
func parseNameList(v cue.Value, field string, lines map[string]int) ([]string, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	recordLine(lines, field, val.Pos())
	return parseStrings(val, field)
}

// parseStrings reads a concrete list of strings.
func parseStrings(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a list of names",
			Pos:     v.Pos(),
		}
	}

	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("entry %s must be a concrete string", iter.Selector()),
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func recordLine(lines map[string]int, field string, pos token.Pos) {
	if pos.IsValid() {
		lines[field] = pos.Line()
	}
}

// CompileError reports a document that could not be turned into an instance.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Line    int // used when Pos is unavailable (YAML sources)
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
