package dsl

import "github.com/apkaudio/openair/pkg/domain"

// NodeBuilder provides a fluent API for configuring one node.
type NodeBuilder struct {
	node     domain.Node
	children *Builder
}

// Range sets the value bounds.
func (n *NodeBuilder) Range(min, max float64) *NodeBuilder {
	n.node.Properties["min"] = min
	n.node.Properties["max"] = max
	return n
}

// Default sets the initial and reset value.
func (n *NodeBuilder) Default(v float64) *NodeBuilder {
	n.node.Properties["default"] = v
	return n
}

// Wrap makes the range cyclic instead of clamped.
func (n *NodeBuilder) Wrap() *NodeBuilder {
	n.node.Properties["wrap"] = true
	return n
}

// Label sets the display label.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Properties["label"] = label
	return n
}

// Channels sets the channel count of a multi-channel fader.
func (n *NodeBuilder) Channels(count int) *NodeBuilder {
	n.node.Properties["channels"] = count
	return n
}

// PublishChannels exposes one topic per channel under the composite topic.
func (n *NodeBuilder) PublishChannels() *NodeBuilder {
	n.node.Properties["publish_channels"] = true
	return n
}

// Duration sets an actuator's transition time in milliseconds.
func (n *NodeBuilder) Duration(ms float64) *NodeBuilder {
	n.node.Properties["duration_ms"] = ms
	return n
}

// Set writes an arbitrary property, for options without a dedicated method.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	n.node.Properties[key] = value
	return n
}

// Group adds a child grouping node. Only valid on group nodes.
func (n *NodeBuilder) Group(path string) *NodeBuilder { return n.children.Group(path) }

// Knob adds a child rotary control. Only valid on group nodes.
func (n *NodeBuilder) Knob(path string) *NodeBuilder { return n.children.Knob(path) }

// Fader adds a child linear control. Only valid on group nodes.
func (n *NodeBuilder) Fader(path string) *NodeBuilder { return n.children.Fader(path) }

// MultiFader adds a child multi-channel fader. Only valid on group nodes.
func (n *NodeBuilder) MultiFader(path string) *NodeBuilder { return n.children.MultiFader(path) }

// MeterKnob adds a child metered rotary control. Only valid on group nodes.
func (n *NodeBuilder) MeterKnob(path string) *NodeBuilder { return n.children.MeterKnob(path) }

// Actuator adds a child shutter control. Only valid on group nodes.
func (n *NodeBuilder) Actuator(path string) *NodeBuilder { return n.children.Actuator(path) }

func (n *NodeBuilder) build() domain.Node {
	node := n.node
	if n.children != nil {
		node.Children = n.children.Build()
	}
	return node
}
