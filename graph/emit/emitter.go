package emit

// Emitter receives observability events from workflow execution.
//
// Implementations must be safe for concurrent use, since independent runs
// of the same compiled graph may emit at the same time, and must not
// panic: a broken sink should drop or log, never kill the run. Emit is
// called on the run's goroutine, so slow sinks slow the run; buffer or
// hand off if the backend is slow.
type Emitter interface {
	Emit(event Event)
}

// Multi fans one event out to several sinks, in order.
type Multi []Emitter

// Emit implements Emitter.
func (m Multi) Emit(event Event) {
	for _, e := range m {
		e.Emit(event)
	}
}
