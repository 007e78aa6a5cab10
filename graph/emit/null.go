package emit

// NullEmitter discards all events. It is the zero-overhead sink for runs
// where event capture is not wanted, without branching at call sites.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit implements Emitter by discarding the event.
func (n *NullEmitter) Emit(Event) {}
