// Package stacksim implements the per-chunk abstract stack interpreter of
// spec.md §4.2: it tracks just enough about each live stack slot to decide
// whether a chunk's effect can be replayed by a short synthetic command
// sequence instead of its original primitives.
package stacksim

import "fmt"

// StackValue is spec.md §3's abstract value: three optional, co-existing
// facts about a slot. The lattice, from most to least precise, is
// "known value" ⊑ "known origin + change/multiple" ⊑ "unknown". Operations
// only ever move a value down the lattice, never back up.
type StackValue struct {
	concrete    uint32
	hasConcrete bool

	origin    int
	hasOrigin bool

	change   int32
	multiple uint32 // defaults to 1; meaningless when hasOrigin is false
}

// Known constructs a fully concrete value.
func Known(v uint32) StackValue {
	return StackValue{concrete: v, hasConcrete: true}
}

// Origin constructs a value tracked back to a chunk-entry stack slot, with
// no accumulated change or scaling yet.
func Origin(idx int) StackValue {
	return StackValue{origin: idx, hasOrigin: true, multiple: 1}
}

// Unknown constructs a value about which nothing is tracked.
func Unknown() StackValue {
	return StackValue{multiple: 1}
}

// IsConcrete reports whether the value's exact contents are known.
func (v StackValue) IsConcrete() bool { return v.hasConcrete }

// ConcreteValue returns the known value and true, or (0, false).
func (v StackValue) ConcreteValue() (uint32, bool) { return v.concrete, v.hasConcrete }

// IsOrigin reports whether the value is symbolic but tracked to a
// chunk-entry stack slot (and not concrete).
func (v StackValue) IsOrigin() bool { return !v.hasConcrete && v.hasOrigin }

// OriginIndex returns the tracked origin index and true, or (0, false).
func (v StackValue) OriginIndex() (int, bool) {
	if v.hasConcrete {
		return 0, false
	}
	return v.origin, v.hasOrigin
}

// Change returns the accumulated additive delta (meaningful only when
// IsOrigin is true).
func (v StackValue) Change() int32 { return v.change }

// Multiple returns the accumulated scaling factor, default 1 (meaningful
// only when IsOrigin is true).
func (v StackValue) Multiple() uint32 {
	if v.multiple == 0 {
		return 1
	}
	return v.multiple
}

// IsUnknown reports whether nothing at all is tracked about the value.
func (v StackValue) IsUnknown() bool { return !v.hasConcrete && !v.hasOrigin }

func (v StackValue) String() string {
	switch {
	case v.hasConcrete:
		return fmt.Sprintf("Known(%d)", v.concrete)
	case v.hasOrigin:
		return fmt.Sprintf("Origin(%d,change=%d,mult=%d)", v.origin, v.change, v.Multiple())
	default:
		return "Unknown"
	}
}

// addConst returns v with delta added to its Change field, preserving
// origin/multiple. Used by Dec/Inc on a symbolic value.
func (v StackValue) addConst(delta int32) StackValue {
	v.change += delta
	return v
}

// add combines two abstract values the way the runtime Add primitive
// combines two concrete stack slots: both concrete sums to a concrete
// value; same tracked origin sums multiples and changes; one concrete plus
// one origin-tracked value folds the concrete side into the origin's
// change; anything else collapses to Unknown.
func add(a, b StackValue) StackValue {
	if a.hasConcrete && b.hasConcrete {
		return Known(a.concrete + b.concrete)
	}
	if a.hasOrigin && b.hasOrigin && a.origin == b.origin {
		return StackValue{
			origin:    a.origin,
			hasOrigin: true,
			change:    a.change + b.change,
			multiple:  a.Multiple() + b.Multiple(),
		}
	}
	if a.hasConcrete && b.hasOrigin {
		return b.addConst(int32(a.concrete))
	}
	if b.hasConcrete && a.hasOrigin {
		return a.addConst(int32(b.concrete))
	}
	return Unknown()
}

// dec implements spec.md §4.2's decrement rule. A concrete zero cannot be
// decremented within this lattice (it would require representing
// underflow), so it collapses straight to Unknown; any other concrete
// value decrements exactly; an origin-tracked value keeps its origin and
// records the decrement in Change; a fully unknown value stays unknown.
func dec(v StackValue) StackValue {
	if v.hasConcrete {
		if v.concrete == 0 {
			return Unknown()
		}
		return Known(v.concrete - 1)
	}
	if v.hasOrigin {
		return v.addConst(-1)
	}
	return Unknown()
}

// sub implements the documented "absolute difference of the two popped
// operands" semantic (spec.md §4.2 and §9 Open Question 1). Symbolic
// information is not preserved across Sub.
func sub(a, b StackValue) StackValue {
	if a.hasConcrete && b.hasConcrete {
		if a.concrete >= b.concrete {
			return Known(a.concrete - b.concrete)
		}
		return Known(b.concrete - a.concrete)
	}
	return Unknown()
}
