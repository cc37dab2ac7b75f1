package dsl

import (
	"github.com/apkaudio/openair/pkg/domain"
)

// Builder accumulates a panel tree. It implements ports.TreeLoader, so a
// built panel plugs directly into the composition engine.
type Builder struct {
	nodes []*NodeBuilder
}

// New creates an empty panel builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) add(typeTag, path string) *NodeBuilder {
	nb := &NodeBuilder{
		node: domain.Node{
			Name:       path,
			Type:       typeTag,
			Path:       path,
			Properties: make(map[string]any),
		},
	}
	b.nodes = append(b.nodes, nb)
	return nb
}

// Group adds a grouping node. Its path becomes a topic fragment for every
// descendant.
func (b *Builder) Group(path string) *NodeBuilder {
	nb := b.add(domain.TypeGroup, path)
	nb.children = &Builder{}
	return nb
}

// Knob adds a rotary control.
func (b *Builder) Knob(path string) *NodeBuilder { return b.add(domain.TypeKnob, path) }

// Fader adds a linear control.
func (b *Builder) Fader(path string) *NodeBuilder { return b.add(domain.TypeFader, path) }

// MultiFader adds a multi-channel fader with a master.
func (b *Builder) MultiFader(path string) *NodeBuilder { return b.add(domain.TypeMultiFader, path) }

// MeterKnob adds a metered rotary control.
func (b *Builder) MeterKnob(path string) *NodeBuilder { return b.add(domain.TypeMeterKnob, path) }

// Actuator adds a toggling shutter control.
func (b *Builder) Actuator(path string) *NodeBuilder { return b.add(domain.TypeActuator, path) }

// Build compiles the tree into domain nodes.
func (b *Builder) Build() []domain.Node {
	nodes := make([]domain.Node, 0, len(b.nodes))
	for _, nb := range b.nodes {
		nodes = append(nodes, nb.build())
	}
	return nodes
}

// Load implements ports.TreeLoader.
func (b *Builder) Load() ([]domain.Node, error) {
	return b.Build(), nil
}
