// Package ir defines XRF's intermediate representation: commands, chunks
// and programs.
package ir

import "fmt"

// Op identifies a command's operation. Primitive ops correspond 1:1 to the
// sixteen hex digits of XRF source text; synthetic ops are introduced only
// by the optimizer and never appear in parsed input.
type Op int

const (
	// Primitive ops, in hex-digit order (0-F).
	Input Op = iota
	Output
	Pop
	Dup
	Swap
	Inc
	Dec
	Add
	IgnoreFirst
	Bottom
	Jump
	Exit
	IgnoreVisited
	Randomize
	Sub
	Nop

	// Synthetic ops. Every one carries an int32 payload; PopSecondValue
	// ignores its payload.
	AddToSecond
	MultiplySecond
	PopSecondValue
	PushSecondValue
	PushValueToBottom
	SetSecondValue
	SetTop
)

// NumPrimitives is the count of primitive ops, and the size of the
// hex-digit-to-Op lookup table.
const NumPrimitives = int(Nop) + 1

var opNames = [...]string{
	Input:              "Input",
	Output:             "Output",
	Pop:                "Pop",
	Dup:                "Dup",
	Swap:               "Swap",
	Inc:                "Inc",
	Dec:                "Dec",
	Add:                "Add",
	IgnoreFirst:        "IgnoreFirst",
	Bottom:             "Bottom",
	Jump:               "Jump",
	Exit:               "Exit",
	IgnoreVisited:      "IgnoreVisited",
	Randomize:          "Randomize",
	Sub:                "Sub",
	Nop:                "Nop",
	AddToSecond:        "AddToSecond",
	MultiplySecond:     "MultiplySecond",
	PopSecondValue:     "PopSecondValue",
	PushSecondValue:    "PushSecondValue",
	PushValueToBottom:  "PushValueToBottom",
	SetSecondValue:     "SetSecondValue",
	SetTop:             "SetTop",
}

func (op Op) String() string {
	if int(op) >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// IsSynthetic reports whether op can only have been produced by
// optimization, never by the parser.
func (op Op) IsSynthetic() bool {
	return op >= AddToSecond
}

// hexToOp maps the sixteen source hex digits (uppercase only, see
// DESIGN.md "Parser case-sensitivity decision") to their primitive Op.
var hexToOp = map[byte]Op{
	'0': Input,
	'1': Output,
	'2': Pop,
	'3': Dup,
	'4': Swap,
	'5': Inc,
	'6': Dec,
	'7': Add,
	'8': IgnoreFirst,
	'9': Bottom,
	'A': Jump,
	'B': Exit,
	'C': IgnoreVisited,
	'D': Randomize,
	'E': Sub,
	'F': Nop,
}

// OpFromHex returns the primitive Op for a hex-digit source character, and
// whether c was a valid command character.
func OpFromHex(c byte) (Op, bool) {
	op, ok := hexToOp[c]
	return op, ok
}

// Command is a single tagged instruction: a primitive command carries no
// payload; a synthetic command always does (PushSecondValue 3 inserts the
// value 3 beneath the current top, and so on).
type Command struct {
	Op      Op
	Payload int32
}

func (c Command) String() string {
	if c.Op.IsSynthetic() {
		return fmt.Sprintf("%s(%d)", c.Op, c.Payload)
	}
	return c.Op.String()
}

// Prim constructs a payload-less primitive command.
func Prim(op Op) Command { return Command{Op: op} }

// Synth constructs a synthetic command with its payload.
func Synth(op Op, payload int32) Command { return Command{Op: op, Payload: payload} }
