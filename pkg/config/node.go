// Package config implements the external "property parsing of values"
// collaborator spec.md section 6 names: a generic YAML-backed property
// tree (Node), decoded on demand into typed scalars, and two document
// decoders that turn that tree into a scene.Scene and a
// renderer.RenderOptions. Grounded on gazed-vu and katalvlaran-lvlath's
// shared use of gopkg.in/yaml.v3 for hierarchical config documents; the
// generic Null/Scalar/Sequence/Map shape mirrors yaml.Node's own Kind
// tagging rather than unmarshaling straight into fixed Go structs, so a
// document can mix known and forward-compatible unknown keys the way
// spec.md section 6 describes a property tree behaving.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind tags which shape a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMap
)

// Node is a generic property-tree value: a parsed YAML document decodes
// into one of these, and callers pull typed scalars out on demand rather
// than unmarshaling directly into fixed structs.
type Node struct {
	Kind     Kind
	Scalar   string
	Sequence []Node
	Map      map[string]Node
}

// ParseYAML decodes a YAML document's bytes into a Node tree.
func ParseYAML(data []byte) (Node, error) {
	var raw yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Node{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	if raw.Kind == 0 {
		return Node{Kind: KindNull}, nil
	}
	// A document node wraps the real root in Content[0].
	if raw.Kind == yaml.DocumentNode {
		if len(raw.Content) == 0 {
			return Node{Kind: KindNull}, nil
		}
		return nodeFromYAML(raw.Content[0]), nil
	}
	return nodeFromYAML(&raw), nil
}

func nodeFromYAML(n *yaml.Node) Node {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return Node{Kind: KindNull}
		}
		return Node{Kind: KindScalar, Scalar: n.Value}
	case yaml.SequenceNode:
		seq := make([]Node, len(n.Content))
		for i, c := range n.Content {
			seq[i] = nodeFromYAML(c)
		}
		return Node{Kind: KindSequence, Sequence: seq}
	case yaml.MappingNode:
		m := make(map[string]Node, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			m[n.Content[i].Value] = nodeFromYAML(n.Content[i+1])
		}
		return Node{Kind: KindMap, Map: m}
	default:
		return Node{Kind: KindNull}
	}
}

// Field looks up a map key, returning (Node{Kind: KindNull}, false) if
// absent or if the receiver isn't a map.
func (n Node) Field(key string) (Node, bool) {
	if n.Kind != KindMap {
		return Node{Kind: KindNull}, false
	}
	v, ok := n.Map[key]
	return v, ok
}

// Has reports whether a map key is present.
func (n Node) Has(key string) bool {
	_, ok := n.Field(key)
	return ok
}

// String decodes the node as a scalar string.
func (n Node) String() (string, error) {
	if n.Kind != KindScalar {
		return "", fmt.Errorf("config: expected scalar, got kind %d", n.Kind)
	}
	return n.Scalar, nil
}

// StringOr decodes a scalar string or returns def if the node is null.
func (n Node) StringOr(def string) string {
	if n.Kind == KindNull {
		return def
	}
	s, err := n.String()
	if err != nil {
		return def
	}
	return s
}

// Float decodes the node as a scalar float64.
func (n Node) Float() (float64, error) {
	s, err := n.String()
	if err != nil {
		return 0, err
	}
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return 0, fmt.Errorf("config: %q is not a number: %w", s, err)
	}
	return f, nil
}

// FloatOr decodes a scalar float or returns def if the node is null.
func (n Node) FloatOr(def float64) float64 {
	if n.Kind == KindNull {
		return def
	}
	f, err := n.Float()
	if err != nil {
		return def
	}
	return f
}

// Int decodes the node as a scalar int.
func (n Node) Int() (int, error) {
	f, err := n.Float()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// IntOr decodes a scalar int or returns def if the node is null.
func (n Node) IntOr(def int) int {
	if n.Kind == KindNull {
		return def
	}
	i, err := n.Int()
	if err != nil {
		return def
	}
	return i
}

// Bool decodes the node as a scalar bool ("true"/"false").
func (n Node) Bool() (bool, error) {
	s, err := n.String()
	if err != nil {
		return false, err
	}
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("config: %q is not a bool", s)
	}
}

// BoolOr decodes a scalar bool or returns def if the node is null.
func (n Node) BoolOr(def bool) bool {
	if n.Kind == KindNull {
		return def
	}
	b, err := n.Bool()
	if err != nil {
		return def
	}
	return b
}

// Vec3 decodes a 3-element sequence node as a core-style [x,y,z] triple.
// Callers in this package convert the returned array to core.Vec3; Node
// itself stays independent of pkg/core so it can be reused for any
// document shape.
func (n Node) Vec3() (x, y, z float64, err error) {
	if n.Kind != KindSequence || len(n.Sequence) != 3 {
		return 0, 0, 0, fmt.Errorf("config: expected 3-element sequence, got kind %d len %d", n.Kind, len(n.Sequence))
	}
	vals := [3]float64{}
	for i, c := range n.Sequence {
		v, err := c.Float()
		if err != nil {
			return 0, 0, 0, err
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}
