package domain

// CompositeState couples a master ValueModel to an ordered set of dependent
// channel models, preserving each channel's offset from the master across
// master-driven moves.
//
// Invariant: after every master-driven update,
// children[i] == clamp(master + offsets[i]). When a channel is adjusted
// directly, its offset is recomputed and the master is untouched.
type CompositeState struct {
	master   *ValueModel
	children []*ValueModel
	offsets  []float64
}

// NewCompositeState builds the coupling from declared per-channel defaults.
// The master starts at the mean of the channels and offsets are derived
// from the initial positions. Offsets persist for the lifetime of the
// composite.
func NewCompositeState(master *ValueModel, children []*ValueModel) *CompositeState {
	s := &CompositeState{master: master, children: children, offsets: make([]float64, len(children))}
	master.Set(s.mean())
	s.recomputeOffsets()
	return s
}

// Master returns the aggregate model.
func (s *CompositeState) Master() *ValueModel { return s.master }

// Children returns the channel models in order.
func (s *CompositeState) Children() []*ValueModel { return s.children }

// Offsets returns a copy of the stored child offsets.
func (s *CompositeState) Offsets() []float64 {
	out := make([]float64, len(s.offsets))
	copy(out, s.offsets)
	return out
}

func (s *CompositeState) mean() float64 {
	if len(s.children) == 0 {
		return s.master.Min()
	}
	var total float64
	for _, c := range s.children {
		total += c.Current()
	}
	return total / float64(len(s.children))
}

func (s *CompositeState) recomputeOffsets() {
	m := s.master.Current()
	for i, c := range s.children {
		s.offsets[i] = c.Current() - m
	}
}

// ApplyMasterDelta moves every channel by the requested delta, clamping each
// at its own boundary, and moves the master by the same delta within its
// range. A channel that saturates has its offset truncated for the remainder
// of the gesture; it does not catch up until the master reverses past the
// point that freed its boundary.
func (s *CompositeState) ApplyMasterDelta(delta float64) float64 {
	applied := s.master.Set(s.master.Current() + delta)
	for i, c := range s.children {
		v := c.Set(c.Current() + delta)
		s.offsets[i] = v - applied
	}
	return applied
}

// SetMaster drives the composite toward the given raw master value,
// applying the resulting delta to every channel.
func (s *CompositeState) SetMaster(raw float64) float64 {
	return s.ApplyMasterDelta(raw - s.master.Current())
}

// SyncChildren reapplies the coupling invariant after an externally driven
// master change (remote message): children[i] = clamp(master + offsets[i]).
// Offsets persist; truncation only happens during local master gestures.
func (s *CompositeState) SyncChildren() {
	m := s.master.Current()
	for i, c := range s.children {
		c.Set(m + s.offsets[i])
	}
}

// ReanchorChild recomputes one channel's offset after its model changed
// outside SetChild (remote message addressed to the channel topic).
func (s *CompositeState) ReanchorChild(i int) {
	s.offsets[i] = s.children[i].Current() - s.master.Current()
}

// SetChild adjusts a single channel and recomputes its offset from the
// master. The master value and all other channels are untouched.
func (s *CompositeState) SetChild(i int, raw float64) float64 {
	v := s.children[i].Set(raw)
	s.offsets[i] = v - s.master.Current()
	return v
}
