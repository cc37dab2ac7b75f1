package domain

// Kind classifies a node's role in the declarative tree.
type Kind string

const (
	// KindWidget is a leaf control owning a single ValueModel.
	KindWidget Kind = "widget"
	// KindComposite is a control owning an aggregate ValueModel plus
	// dependent channels. Composites register only themselves with the
	// state mirror.
	KindComposite Kind = "composite"
	// KindGroup is a pure grouping node. It contributes a path fragment
	// (when present) but owns no value and no topic.
	KindGroup Kind = "group"
)

// Widget type tags dispatched by the composition engine's registry.
const (
	TypeKnob       = "knob"
	TypeFader      = "fader"
	TypeMultiFader = "multifader"
	TypeMeterKnob  = "meterknob"
	TypeActuator   = "actuator"
	TypeGroup      = "group"
)

// Node represents one entry of the declarative widget tree.
// It is immutable once parsed.
type Node struct {
	// Name is the document key the node was declared under.
	Name string `json:"name" yaml:"name"`

	// Type is the widget kind tag, e.g. "knob" or "multifader".
	Type string `json:"type" yaml:"type"`

	// Path is this node's own path fragment. Fragments concatenate with
	// the topic separator while walking the tree; the full path is the
	// state-mirror registration key. May be empty only for groups.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Properties holds the named configuration values for the widget
	// (ranges, colors, behavioral flags). Decoded per widget type.
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`

	// Children are nested nodes, in declaration order.
	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Kind derives the node's role from its type tag.
func (n Node) Kind() Kind {
	switch n.Type {
	case TypeGroup, "":
		return KindGroup
	case TypeMultiFader, TypeMeterKnob:
		return KindComposite
	default:
		return KindWidget
	}
}
