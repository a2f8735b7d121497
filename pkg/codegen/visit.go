package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"xrfc/pkg/ir"
)

// lowerBody lowers cmds into block in order, terminating with a branch to
// nextChunk (or the dispatcher, if nextChunk is nil) once cmds is
// exhausted. If hasPendingVisited, that visited flag is stored just
// before the terminating branch — this is how a tail/skip path produced
// by lowerVisitSplit marks itself visited only once it actually reaches
// the end of the chunk (spec.md §4.5's visit-aware split).
func (g *generator) lowerBody(block llvm.BasicBlock, cmds []ir.Command, nextChunk *int, pendingVisited llvm.Value, hasPendingVisited bool) {
	g.builder.SetInsertPointAtEnd(block)

	for i, cmd := range cmds {
		switch cmd.Op {
		case ir.Jump:
			g.terminate(nextChunk, pendingVisited, hasPendingVisited)
			return
		case ir.Exit:
			g.builder.CreateRet(llvm.ConstInt(g.i32, 0, false))
			return
		case ir.IgnoreFirst, ir.IgnoreVisited:
			if i == len(cmds)-1 {
				// Last command in this slice: no tail/skip to choose
				// between, so it lowers as a no-op.
				continue
			}
			g.lowerVisitSplit(cmd.Op, cmds, i, nextChunk)
			return
		default:
			g.lowerOne(cmd)
		}
	}

	g.terminate(nextChunk, pendingVisited, hasPendingVisited)
}

func (g *generator) terminate(nextChunk *int, visited llvm.Value, hasVisited bool) {
	if hasVisited {
		g.builder.CreateStore(llvm.ConstInt(g.i1, 1, false), visited)
	}
	if nextChunk != nil {
		g.builder.CreateBr(g.chunkBlocks[*nextChunk])
	} else {
		g.builder.CreateBr(g.dispatchBlk)
	}
}

// lowerVisitSplit implements IgnoreFirst/IgnoreVisited at cmds[i]: load
// the chunk's visited flag, branch to a fresh tail block (commands
// i+1..) or a fresh skip block (commands i+2.., discarding i+1
// entirely), and compile each recursively — the path chosen on the
// not-yet-visited branch sets the flag right before its own terminator.
func (g *generator) lowerVisitSplit(op ir.Op, cmds []ir.Command, i int, nextChunk *int) {
	visited := g.visitedFlag(g.currentChunk)

	cur := g.builder.GetInsertBlock()
	fn := cur.Parent()

	loaded := g.builder.CreateLoad(g.i1, visited, "visited")

	tailCmds := cmds[i+1:]
	var skipCmds []ir.Command
	if i+2 <= len(cmds) {
		skipCmds = cmds[i+2:]
	}

	tailBlock := g.ctx.AddBasicBlock(fn, fmt.Sprintf("chunk%d_tail%d", g.currentChunk, i))
	skipBlock := g.ctx.AddBasicBlock(fn, fmt.Sprintf("chunk%d_skip%d", g.currentChunk, i))

	switch op {
	case ir.IgnoreVisited:
		// Already visited: skip the guarded command. Not yet visited: take
		// the tail and mark visited on the way out.
		g.builder.CreateCondBr(loaded, skipBlock, tailBlock)
		g.lowerBody(skipBlock, skipCmds, nextChunk, llvm.Value{}, false)
		g.lowerBody(tailBlock, tailCmds, nextChunk, visited, true)
	case ir.IgnoreFirst:
		// Already visited: take the tail normally. Not yet visited: skip
		// the guarded command and mark visited on the way out.
		g.builder.CreateCondBr(loaded, tailBlock, skipBlock)
		g.lowerBody(tailBlock, tailCmds, nextChunk, llvm.Value{}, false)
		g.lowerBody(skipBlock, skipCmds, nextChunk, visited, true)
	}
}

// visitedFlag returns the private i1 global tracking whether chunkIndex's
// visit-aware command has fired before, creating and zero-initializing it
// on first use so repeated references to the same chunk share one flag.
func (g *generator) visitedFlag(chunkIndex int) llvm.Value {
	if v, ok := g.visited[chunkIndex]; ok {
		return v
	}
	global := llvm.AddGlobal(g.mod, g.i1, fmt.Sprintf("visited-%d", chunkIndex))
	global.SetLinkage(llvm.PrivateLinkage)
	global.SetInitializer(llvm.ConstInt(g.i1, 0, false))
	g.visited[chunkIndex] = global
	return global
}
