package stacksim

// AbstractStack is spec.md §3's per-chunk abstraction: the chunk's own
// index (_origIndex), how far below chunk entry the simulator has been
// forced to pop (_maxPopped), whether any I/O primitive ran (_hadIO), the
// ordered list of values sent to the bottom of the real stack (_bottom),
// and the remaining live contents (_values, top-at-end).
type AbstractStack struct {
	origIndex int
	maxPopped int
	hadIO     bool
	bottom    []StackValue
	values    []StackValue
}

// New constructs the AbstractStack for a chunk whose own index is
// origIndex: the stack top at chunk entry is known concretely to equal
// origIndex (it is how control reached this chunk in the first place), not
// merely symbolically — canOptimize's concreteness checks depend on this.
func New(origIndex int) *AbstractStack {
	return &AbstractStack{
		origIndex: origIndex,
		values:    []StackValue{Known(uint32(origIndex))},
	}
}

// HadIO reports whether Input or Output ran during this simulation.
func (s *AbstractStack) HadIO() bool { return s.hadIO }

// MaxPopped reports how many chunk-entry slots the simulator had to
// synthesize on underflow.
func (s *AbstractStack) MaxPopped() int { return s.maxPopped }

// Bottom returns the ordered list of values sent to the stack bottom via
// the Bottom primitive.
func (s *AbstractStack) Bottom() []StackValue { return s.bottom }

// Values returns the remaining live stack contents, top-at-end.
func (s *AbstractStack) Values() []StackValue { return s.values }

// push appends a new top value.
func (s *AbstractStack) push(v StackValue) {
	s.values = append(s.values, v)
}

// pop removes and returns the current top value. On underflow (no tracked
// values remain) it synthesizes a fresh symbolic value for the stack slot
// one deeper than anything seen so far, exactly as spec.md §4.2 describes,
// and counts the underflow in maxPopped.
func (s *AbstractStack) pop() StackValue {
	if len(s.values) == 0 {
		s.maxPopped++
		return Origin(s.maxPopped)
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v
}

// top returns the current top value without removing it, or Unknown if
// the abstraction currently tracks nothing (never actually observed: pop
// always refills on underflow, so this only matters for a chunk whose
// very first command is a query — XRF has none).
func (s *AbstractStack) top() StackValue {
	if len(s.values) == 0 {
		return Unknown()
	}
	return s.values[len(s.values)-1]
}
