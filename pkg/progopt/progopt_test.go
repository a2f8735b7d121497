package progopt

import (
	"testing"

	"xrfc/pkg/ir"
)

func next(n int) *int { return &n }

func TestFusesChainOfPureSyntheticChunks(t *testing.T) {
	p := &ir.Program{Chunks: []*ir.Chunk{
		{Commands: []ir.Command{ir.Synth(ir.SetTop, 1)}, NextChunk: next(1)},
		{Commands: []ir.Command{ir.Synth(ir.AddToSecond, 3)}, NextChunk: next(2)},
		{Commands: []ir.Command{ir.Prim(ir.Exit)}}, // not pure-synthetic: fusion stops here
	}}

	out := Optimize(p)
	fused := out.Chunks[0]
	if len(fused.Commands) != 2 {
		t.Fatalf("expected 2 fused commands, got %v", fused.Commands)
	}
	if fused.NextChunk == nil || *fused.NextChunk != 2 {
		t.Fatalf("NextChunk = %v, want 2", fused.NextChunk)
	}
}

func TestNoFusionWhenStartIsNotPureSynthetic(t *testing.T) {
	p := &ir.Program{Chunks: []*ir.Chunk{
		{Commands: []ir.Command{ir.Prim(ir.Exit)}},
	}}
	out := Optimize(p)
	if out.Chunks[0] != p.Chunks[0] {
		t.Fatalf("expected the unfusable chunk to be returned unchanged")
	}
}

func TestCycleAbandonsFusion(t *testing.T) {
	p := &ir.Program{Chunks: []*ir.Chunk{
		{Commands: []ir.Command{ir.Synth(ir.SetTop, 1)}, NextChunk: next(1)},
		{Commands: []ir.Command{ir.Synth(ir.SetTop, 2)}, NextChunk: next(0)},
	}}
	out := Optimize(p)
	if len(out.Chunks[0].Commands) != 1 {
		t.Fatalf("expected cyclic chain to abandon fusion, got %v", out.Chunks[0].Commands)
	}
}

func TestCondenseStackTopsKeepsOnlyLast(t *testing.T) {
	cmds := []ir.Command{
		ir.Synth(ir.SetTop, 1),
		ir.Synth(ir.AddToSecond, 2),
		ir.Synth(ir.SetTop, 9),
	}
	got := condenseStackTops(cmds)
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 commands", got)
	}
	if got[0].Op != ir.AddToSecond || got[1].Op != ir.SetTop || got[1].Payload != 9 {
		t.Fatalf("got %v, want [AddToSecond, SetTop(9)]", got)
	}
}
