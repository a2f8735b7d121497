package stacksim

import "xrfc/pkg/ir"

// Apply interprets one of the ten stack-affecting primitives spec.md §4.2
// lists (Add, Dec, Inc, Sub, Dup, Swap, Pop, Bottom, Input, Output) against
// s. Any other op is a caller error — the chunk-level optimizer is
// responsible for handling Jump/Exit/Randomize/IgnoreFirst/IgnoreVisited/
// Nop itself before ever reaching here.
func Apply(s *AbstractStack, op ir.Op) {
	switch op {
	case ir.Add:
		a := s.pop()
		b := s.pop()
		s.push(add(a, b))
	case ir.Dec:
		s.push(dec(s.pop()))
	case ir.Inc:
		s.push(add(s.pop(), Known(1)))
	case ir.Sub:
		a := s.pop()
		b := s.pop()
		s.push(sub(a, b))
	case ir.Dup:
		v := s.pop()
		s.push(v)
		s.push(v)
	case ir.Swap:
		a := s.pop()
		b := s.pop()
		s.push(a)
		s.push(b)
	case ir.Pop:
		s.pop()
	case ir.Bottom:
		s.bottom = append(s.bottom, s.pop())
	case ir.Input:
		s.push(Unknown())
		s.hadIO = true
	case ir.Output:
		s.pop()
		s.hadIO = true
	default:
		panic("stacksim: Apply called with a non-simulated op " + op.String())
	}
}

// GetStackTop returns the concrete post-chunk top value, if known.
func (s *AbstractStack) GetStackTop() (uint32, bool) {
	if len(s.values) == 0 {
		return 0, false
	}
	top := s.values[len(s.values)-1]
	return top.ConcreteValue()
}

// canOptimize implements spec.md §4.2's can-optimize predicate exactly.
func (s *AbstractStack) canOptimize() bool {
	if s.hadIO {
		return false
	}
	if s.maxPopped >= 2 {
		return false
	}
	for _, v := range s.bottom {
		if !v.IsConcrete() {
			return false
		}
	}
	n := len(s.values)
	if n < 1 || n > 2 {
		return false
	}
	top := s.values[n-1]
	if !top.IsConcrete() {
		return false
	}
	if n == 2 {
		second := s.values[0]
		if second.IsConcrete() {
			return true
		}
		if idx, ok := second.OriginIndex(); !ok || idx != 1 {
			return false
		}
	}
	return true
}

// GetCommands returns the synthetic command sequence that reproduces this
// AbstractStack's final state, in the exact order spec.md §4.2 mandates,
// or (nil, false) when canOptimize is false.
func (s *AbstractStack) GetCommands() ([]ir.Command, bool) {
	if !s.canOptimize() {
		return nil, false
	}

	var cmds []ir.Command

	for _, v := range s.bottom {
		val, _ := v.ConcreteValue()
		cmds = append(cmds, ir.Synth(ir.PushValueToBottom, int32(val)))
	}

	top, _ := s.GetStackTop()
	if int(top) != s.origIndex {
		cmds = append(cmds, ir.Synth(ir.SetTop, int32(top)))
	}

	n := len(s.values)
	if n == 2 {
		second := s.values[0]
		switch {
		case second.IsConcrete():
			val, _ := second.ConcreteValue()
			if s.maxPopped == 0 {
				cmds = append(cmds, ir.Synth(ir.PushSecondValue, int32(val)))
			} else {
				cmds = append(cmds, ir.Synth(ir.SetSecondValue, int32(val)))
			}
		case second.Multiple() > 1:
			cmds = append(cmds, ir.Synth(ir.MultiplySecond, int32(second.Multiple())))
		case second.Change() != 0:
			cmds = append(cmds, ir.Synth(ir.AddToSecond, second.Change()))
		}
	} else if n == 1 && s.maxPopped == 1 {
		cmds = append(cmds, ir.Synth(ir.PopSecondValue, 0))
	}

	return cmds, true
}
