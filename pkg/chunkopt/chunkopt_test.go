package chunkopt

import (
	"testing"

	"xrfc/pkg/ir"
)

func chunk(cmds ...ir.Command) *ir.Chunk {
	return &ir.Chunk{Commands: cmds}
}

func TestKnownNextChunkSetsDirectBranch(t *testing.T) {
	// A chunk whose index is 3, incrementing four times ends with top=7.
	p := &ir.Program{Chunks: []*ir.Chunk{
		chunk(ir.Prim(ir.Nop)), chunk(ir.Prim(ir.Nop)), chunk(ir.Prim(ir.Nop)),
		chunk(ir.Prim(ir.Inc), ir.Prim(ir.Inc), ir.Prim(ir.Inc), ir.Prim(ir.Inc)),
	}}
	out := Optimize(p)
	c := out.Chunks[3]
	if c.NextChunk == nil || *c.NextChunk != 7 {
		t.Fatalf("NextChunk = %v, want 7", c.NextChunk)
	}
}

func TestExitDisablesOptimization(t *testing.T) {
	p := &ir.Program{Chunks: []*ir.Chunk{
		chunk(ir.Prim(ir.Inc), ir.Prim(ir.Exit)),
	}}
	out := Optimize(p)
	c := out.Chunks[0]
	if c.NextChunk != nil {
		t.Fatalf("NextChunk = %v, want nil (Exit disables optimization)", c.NextChunk)
	}
	if len(c.Commands) != 2 {
		t.Fatalf("commands rewritten despite Exit: %v", c.Commands)
	}
}

func TestIOPreventsCommandRewrite(t *testing.T) {
	p := &ir.Program{Chunks: []*ir.Chunk{
		chunk(ir.Prim(ir.Input), ir.Prim(ir.Output)),
	}}
	out := Optimize(p)
	c := out.Chunks[0]
	if len(c.Commands) != 2 {
		t.Fatalf("expected I/O chunk left untouched, got %v", c.Commands)
	}
}

func TestIdempotent(t *testing.T) {
	p := &ir.Program{Chunks: []*ir.Chunk{
		chunk(ir.Prim(ir.Inc), ir.Prim(ir.Inc)),
	}}
	once := Optimize(p)
	twice := Optimize(once)

	if len(once.Chunks[0].Commands) != len(twice.Chunks[0].Commands) {
		t.Fatalf("not idempotent: once=%v twice=%v", once.Chunks[0].Commands, twice.Chunks[0].Commands)
	}
	for i := range once.Chunks[0].Commands {
		if once.Chunks[0].Commands[i] != twice.Chunks[0].Commands[i] {
			t.Fatalf("not idempotent at %d: once=%v twice=%v", i, once.Chunks[0].Commands, twice.Chunks[0].Commands)
		}
	}
}

func TestJumpStopsSimulationEarly(t *testing.T) {
	// Commands after Jump are dead and must not affect the result.
	p := &ir.Program{Chunks: []*ir.Chunk{
		chunk(ir.Prim(ir.Inc), ir.Prim(ir.Jump), ir.Prim(ir.Exit)),
	}}
	out := Optimize(p)
	c := out.Chunks[0]
	// Inc ran (top becomes origIndex+1 = 1) before Jump; Jump does not
	// disable optimization, it only truncates simulation.
	if c.NextChunk == nil || *c.NextChunk != 1 {
		t.Fatalf("NextChunk = %v, want 1", c.NextChunk)
	}
}

func TestMixedPrimitiveAndSyntheticPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on mixed primitive/synthetic input")
		}
	}()
	p := &ir.Program{Chunks: []*ir.Chunk{
		chunk(ir.Prim(ir.Inc), ir.Synth(ir.SetTop, 5)),
	}}
	Optimize(p)
}
