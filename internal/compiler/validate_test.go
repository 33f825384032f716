package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	doc, err := CompileYAML([]byte(twoByTwoYAML))
	require.NoError(t, err)
	assert.Empty(t, Validate(doc))
}

func TestValidate_Codes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
		field string
		line  int
	}{
		{
			name: "size mismatch",
			input: `proposers: [A, B]
reviewers: [X]
preferences:
  A: [X]
  B: [X]
  X: [A, B]
`,
			code:  ErrCodeSizeMismatch,
			field: "reviewers",
			line:  2,
		},
		{
			name: "empty name",
			input: `proposers: [A, ""]
reviewers: [X, Y]
preferences: {}
`,
			code:  ErrCodeEmptyName,
			field: "proposers",
			line:  1,
		},
		{
			name: "duplicate reviewer",
			input: `proposers: [A, B]
reviewers: [X, X]
preferences: {}
`,
			code:  ErrCodeDuplicateName,
			field: "reviewers",
			line:  2,
		},
		{
			name: "overlap",
			input: `proposers: [A]
reviewers: [A]
preferences:
  A: [A]
`,
			code:  ErrCodeOverlap,
			field: "reviewers",
			line:  2,
		},
		{
			name: "missing preferences",
			input: `proposers: [A]
reviewers: [X]
preferences:
  A: [X]
`,
			code:  ErrCodeMissingPreferences,
			field: "preferences",
			line:  3,
		},
		{
			name: "incomplete ranking",
			input: `proposers: [A, B]
reviewers: [X, Y]
preferences:
  A: [X]
  B: [X, Y]
  X: [A, B]
  Y: [A, B]
`,
			code:  ErrCodeInvalidRanking,
			field: "preferences.A",
			line:  4,
		},
		{
			name: "unknown participant",
			input: `proposers: [A]
reviewers: [X]
preferences:
  A: [X]
  X: [A]
  Z: [A]
`,
			code:  ErrCodeUnknownParticipant,
			field: "preferences.Z",
			line:  6,
		},
		{
			name: "decomposed reviewer name",
			input: "proposers: [A]\n" +
				"reviewers: [\"e\u0301\"]\n" +
				"preferences:\n" +
				"  A: [\"e\u0301\"]\n" +
				"  \"e\u0301\": [A]\n",
			code:  ErrCodeUnnormalizedName,
			field: "reviewers",
			line:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := CompileYAML([]byte(tt.input))
			require.NoError(t, err)

			errs := Validate(doc)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.line, errs[0].Line)
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	doc, err := CompileYAML([]byte(`proposers: [A, B]
reviewers: [X]
preferences:
  A: [X]
`))
	require.NoError(t, err)

	codes := make([]string, 0)
	for _, e := range Validate(doc) {
		codes = append(codes, e.Code)
	}
	// size mismatch, B missing, X missing
	assert.Equal(t, []string{ErrCodeSizeMismatch, ErrCodeMissingPreferences, ErrCodeMissingPreferences}, codes)
}

func TestValidationError_Format(t *testing.T) {
	e := ValidationError{Field: "preferences.A", Message: "bad", Code: ErrCodeInvalidRanking, Line: 4}
	assert.Equal(t, "[E106] line 4: preferences.A: bad", e.Error())

	e.Line = 0
	assert.Equal(t, "[E106] preferences.A: bad", e.Error())
}
