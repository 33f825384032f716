package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/gsmatch/internal/compiler"
	"github.com/roach88/gsmatch/internal/ir"
	"github.com/roach88/gsmatch/internal/store"
)

// Error codes for CLI load and I/O failures. Validation codes (E1xx) live
// in the compiler; engine failures use the engine's string codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No scenario files found
	ErrCodeParseFailed = "E004" // Instance document could not be compiled
	ErrCodeNotFound    = "E005" // Path or run not found
	ErrCodeStoreFailed = "E006" // Database open/read/write failed
	ErrCodeWriteFailed = "E007" // File write error
)

// LoadError represents an error that occurred while loading an input.
type LoadError struct {
	Code    string
	Message string
	Line    int // source line, when known
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// exitCode maps a load failure to a process exit code. A document that
// exists but does not compile is a failure of the input (1); anything else
// is a command error (2).
func (e *LoadError) exitCode() int {
	if e.Code == ErrCodeParseFailed {
		return ExitFailure
	}
	return ExitCommandError
}

// loadInstance reads and compiles an instance file.
func loadInstance(path string) (*compiler.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("instance file not found: %s", path), Err: err}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("error accessing instance file: %v", err), Err: err}
	}

	doc, err := compiler.LoadFile(path)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
		}
		var line int
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			line = ce.Line
			if ce.Pos.IsValid() {
				line = ce.Pos.Line()
			}
		}
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: err.Error(), Line: line, Err: err}
	}
	return doc, nil
}

// openExistingStore opens a database that must already exist. Read-only
// commands use it so a mistyped path does not create an empty database.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", path), Err: err}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("error accessing database: %v", err), Err: err}
	}
	return openStore(path)
}

func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("failed to open database: %v", err), Err: err}
	}
	return st, nil
}

// loadRun reads a stored run, reporting a missing ID as ErrCodeNotFound.
func loadRun(ctx context.Context, st *store.Store, runID string) (*ir.Run, error) {
	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("run not found: %s", runID), Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error(), Err: err}
	}
	return run, nil
}

// outputLoadError reports err through the formatter and converts it to an
// ExitError.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var le *LoadError
	if !errors.As(err, &le) {
		le = &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
	}
	if outErr := formatter.Error(le.Code, le.Message, nil); outErr != nil {
		return outErr
	}
	return WrapExitError(le.exitCode(), le.Code, err)
}
