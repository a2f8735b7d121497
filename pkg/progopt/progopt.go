// Package progopt implements the program-level optimizer of spec.md §4.4:
// fusing runs of pure-synthetic chunks reached by statically known jumps
// into a single chunk.
package progopt

import "xrfc/pkg/ir"

// Optimize fuses eligible chunk runs in p and returns a new program. p is
// never mutated.
func Optimize(p *ir.Program) *ir.Program {
	out := make([]*ir.Chunk, len(p.Chunks))
	for i, c := range p.Chunks {
		out[i] = fuse(p, i, c)
	}
	return &ir.Program{Chunks: out}
}

// fuse attempts to fuse the chunk run starting at index i, exactly per
// spec.md §4.4: while the currently considered chunk is pure-synthetic and
// has a known successor, append its commands and follow; stop, without
// inlining it, at the first chunk that is not pure-synthetic or has no
// known successor. If the chain would re-enter a chunk already fused on
// this pass, the whole fusion is abandoned and chunk i is returned
// unchanged. If chunk i itself doesn't qualify, nothing is fused and it is
// returned unchanged.
func fuse(p *ir.Program, i int, start *ir.Chunk) *ir.Chunk {
	if !start.IsPureSynthetic() || start.NextChunk == nil {
		return start
	}

	fused := append([]ir.Command{}, start.Commands...)
	nextIdx := *start.NextChunk
	visited := map[int]bool{i: true}

	for {
		if visited[nextIdx] {
			// Cycle: re-entering a chunk already fused on this pass.
			return start
		}
		if !p.Valid(nextIdx) {
			break
		}
		cur := p.Chunks[nextIdx]
		if !cur.IsPureSynthetic() || cur.NextChunk == nil {
			break
		}
		visited[nextIdx] = true
		fused = append(fused, cur.Commands...)
		nextIdx = *cur.NextChunk
	}

	final := nextIdx
	return &ir.Chunk{
		Commands:  condenseStackTops(fused),
		Pos:       start.Pos,
		NextChunk: &final,
	}
}

// condenseStackTops scans from end to beginning, keeping only the last
// SetTop and erasing any earlier SetTop, since the final one overwrites
// whatever an earlier one wrote.
func condenseStackTops(cmds []ir.Command) []ir.Command {
	lastSetTop := -1
	for i := len(cmds) - 1; i >= 0; i-- {
		if cmds[i].Op == ir.SetTop {
			lastSetTop = i
			break
		}
	}
	if lastSetTop == -1 {
		return cmds
	}

	out := make([]ir.Command, 0, len(cmds))
	for i, c := range cmds {
		if c.Op == ir.SetTop && i != lastSetTop {
			continue
		}
		out = append(out, c)
	}
	return out
}
