// Package loader parses declarative YAML graph documents into live
// graphs. It is the file-based counterpart of the pkg/dsl builder and is
// what the CLI uses for `arbor validate` and `arbor graph`.
package loader

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/graph"
)

// NodeDoc declares one node: a local name, a registered type, and
// optional configuration parameters.
type NodeDoc struct {
	Name   string         `yaml:"name" json:"name"`
	Type   string         `yaml:"type" json:"type"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// ConnectionDoc declares one edge as "node.field" endpoint references.
type ConnectionDoc struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// ExposureDoc aliases an inner port at the graph boundary.
type ExposureDoc struct {
	Port      string `yaml:"port" json:"port"`
	Direction string `yaml:"direction" json:"direction"`
}

// Document is the schema of a graph file.
type Document struct {
	Mode        string          `yaml:"mode,omitempty" json:"mode,omitempty"`
	Nodes       []NodeDoc       `yaml:"nodes" json:"nodes"`
	Connections []ConnectionDoc `yaml:"connections,omitempty" json:"connections,omitempty"`
	Expose      []ExposureDoc   `yaml:"expose,omitempty" json:"expose,omitempty"`
}

// Parse decodes a YAML graph document and builds the graph it declares.
func Parse(data []byte, factory graph.Factory) (*graph.Graph, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse graph document: %w", err)
	}
	return build(&doc, factory)
}

// LoadFile reads and builds the graph document at path.
func LoadFile(path string, factory graph.Factory) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph document: %w", err)
	}
	return Parse(data, factory)
}

func build(doc *Document, factory graph.Factory) (*graph.Graph, error) {
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("graph document declares no nodes")
	}

	b := dsl.New(factory)
	mode, err := graph.ParseMode(doc.Mode)
	if err != nil {
		return nil, err
	}
	if mode == graph.ModeLive {
		b.Live()
	}

	seen := make(map[string]bool, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		if nd.Name == "" {
			return nil, fmt.Errorf("node missing name")
		}
		if nd.Type == "" {
			return nil, fmt.Errorf("node %q missing type", nd.Name)
		}
		if seen[nd.Name] {
			return nil, fmt.Errorf("duplicate node name %q", nd.Name)
		}
		seen[nd.Name] = true

		nb := b.Add(nd.Name, nd.Type)
		for k, v := range nd.Params {
			nb.Param(k, v)
		}
	}

	for _, cd := range doc.Connections {
		fromNode, fromField, err := splitRef(cd.From)
		if err != nil {
			return nil, fmt.Errorf("connection from: %w", err)
		}
		toNode, toField, err := splitRef(cd.To)
		if err != nil {
			return nil, fmt.Errorf("connection to: %w", err)
		}
		b.Connect(fromNode, fromField, toNode, toField)
	}

	for _, xd := range doc.Expose {
		node, field, err := splitRef(xd.Port)
		if err != nil {
			return nil, fmt.Errorf("expose: %w", err)
		}
		dir, err := graph.ParseDirection(xd.Direction)
		if err != nil {
			return nil, fmt.Errorf("expose %s: %w", xd.Port, err)
		}
		if dir == graph.Input {
			b.ExposeInput(node, field)
		} else {
			b.ExposeOutput(node, field)
		}
	}

	return b.Build()
}

// splitRef parses a "node.field" endpoint reference.
func splitRef(ref string) (node, field string, err error) {
	node, field, ok := strings.Cut(ref, ".")
	if !ok || node == "" || field == "" {
		return "", "", fmt.Errorf("invalid port reference %q, want \"node.field\"", ref)
	}
	return node, field, nil
}
