package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gsmatch/internal/ir"
)

// CompileYAML decodes a YAML instance document:
//
//	proposers: [A, B]
//	reviewers: [X, Y]
//	preferences:
//	  A: [X, Y]
//	  ...
//
// Unknown top-level fields are rejected.
func CompileYAML(data []byte) (*Document, error) {
	var inst ir.Instance
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&inst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &CompileError{Field: "document", Message: "instance document is empty"}
		}
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}

	doc := &Document{
		Format:   FormatYAML,
		Instance: inst,
		Lines:    yamlLines(&root),
	}

	for _, field := range []string{"proposers", "reviewers", "preferences"} {
		if _, ok := doc.Lines[field]; !ok {
			return nil, &CompileError{Field: field, Message: field + " is required"}
		}
	}
	if doc.Instance.Proposers == nil {
		doc.Instance.Proposers = []string{}
	}
	if doc.Instance.Reviewers == nil {
		doc.Instance.Reviewers = []string{}
	}
	if doc.Instance.Preferences == nil {
		doc.Instance.Preferences = map[string][]string{}
	}
	return doc, nil
}

// yamlLines records the line of every top-level key and of every entry in
// the preferences mapping.
func yamlLines(root *yaml.Node) map[string]int {
	lines := make(map[string]int)
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return lines
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return lines
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		lines[key.Value] = key.Line
		if key.Value != "preferences" || val.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(val.Content); j += 2 {
			owner := val.Content[j]
			lines[fmt.Sprintf("preferences.%s", owner.Value)] = owner.Line
		}
	}
	return lines
}
