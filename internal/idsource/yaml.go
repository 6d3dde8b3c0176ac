package idsource

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLReader reads a YAML sequence of identifiers, either at the top level
// or under an "identifiers" key:
//
//	identifiers:
//	  - 0055081
//	  - 61234
//
// Scalars are taken verbatim, so leading zeros survive.
type YAMLReader struct{}

// Read decodes the document and returns its identifier sequence.
func (YAMLReader) Read(r io.Reader) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	seq, err := identifierSequence(root)
	if err != nil {
		return nil, err
	}
	if seq == nil {
		return nil, nil
	}

	entries := make([]Entry, 0, len(seq.Content))
	for i, item := range seq.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("item %d (line %d): expected a scalar identifier", i+1, item.Line)
		}
		if item.Tag == "!!null" {
			continue
		}
		entries = append(entries, Entry{Value: item.Value, Location: fmt.Sprintf("item %d (line %d)", i+1, item.Line)})
	}
	return entries, nil
}

func identifierSequence(n *yaml.Node) (*yaml.Node, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		return n, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value != "identifiers" {
				continue
			}
			v := n.Content[i+1]
			if v.Kind == yaml.ScalarNode && v.Tag == "!!null" {
				return nil, nil
			}
			if v.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("line %d: identifiers must be a list", v.Line)
			}
			return v, nil
		}
		return nil, fmt.Errorf("line %d: mapping has no identifiers key", n.Line)
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("line %d: expected a list of identifiers", n.Line)
}
