package ir

// Program is the ordered, 0-indexed chunk list that both optimizer stages
// and the code generator operate on. Execution (conceptually — this
// package never executes anything, see spec.md §1 Non-goals) begins at
// chunk 0 with the runtime stack holding only the value 0.
type Program struct {
	Chunks []*Chunk
}

// Len returns the chunk count.
func (p *Program) Len() int { return len(p.Chunks) }

// Valid reports whether idx addresses a chunk in this program.
func (p *Program) Valid(idx int) bool { return idx >= 0 && idx < len(p.Chunks) }
