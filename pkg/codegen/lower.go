package codegen

import (
	"tinygo.org/x/go-llvm"

	"xrfc/pkg/diag"
	"xrfc/pkg/ir"
)

// wrap64 masks v (an i64 index) into [0, StackSize) by exploiting that
// StackSize is a power of two: AND with StackSize-1 reproduces mod-2^16
// wraparound for both overflow (top+1 past the end) and underflow
// (top-1 below zero, which as an i64 subtraction result is all-ones in
// the high bits and masks down to the correct wrapped index).
func (g *generator) wrap64(v llvm.Value) llvm.Value {
	return g.builder.CreateAnd(v, llvm.ConstInt(g.i64, StackSize-1, false), "wrapped")
}

func (g *generator) loadTop() llvm.Value {
	return g.builder.CreateLoad(g.i32, g.topValue, "top_value")
}

func (g *generator) storeTop(v llvm.Value) {
	g.builder.CreateStore(v, g.topValue)
}

func (g *generator) loadTopIdx() llvm.Value {
	return g.builder.CreateLoad(g.i64, g.top, "top_idx")
}

func (g *generator) stackSlot(idx llvm.Value) llvm.Value {
	return g.builder.CreateGEP(g.stackType, g.stack, []llvm.Value{
		llvm.ConstInt(g.i64, 0, false), idx,
	}, "stack_slot")
}

// secondPtr returns a pointer to the cell holding the value just below
// the cached top register, i.e. stack[(top-1) mod 2^16] (spec.md §3:
// the array never stores the current top itself).
func (g *generator) secondPtr() llvm.Value {
	idx := g.wrap64(g.builder.CreateSub(g.loadTopIdx(), llvm.ConstInt(g.i64, 1, false), "second_idx"))
	return g.stackSlot(idx)
}

// emitPush writes the cached top register into its array cell, installs
// v as the new cached top, and advances the top cursor.
func (g *generator) emitPush(v llvm.Value) {
	cur := g.loadTop()
	idx := g.loadTopIdx()
	g.builder.CreateStore(cur, g.stackSlot(idx))
	g.storeTop(v)
	g.builder.CreateStore(g.wrap64(g.builder.CreateAdd(idx, llvm.ConstInt(g.i64, 1, false), "top_inc")), g.top)
}

// emitPop retreats the top cursor and reloads the cached top register
// from the array cell that is now the new top.
func (g *generator) emitPop() {
	idx := g.loadTopIdx()
	newIdx := g.wrap64(g.builder.CreateSub(idx, llvm.ConstInt(g.i64, 1, false), "top_dec"))
	g.builder.CreateStore(newIdx, g.top)
	g.storeTop(g.builder.CreateLoad(g.i32, g.stackSlot(newIdx), "popped"))
}

func (g *generator) lowerInput() {
	call := g.builder.CreateCall(g.getcharTy, g.getcharFn, nil, "c")
	negOne := llvm.ConstInt(g.i32, 0xFFFFFFFF, false)
	isEOF := g.builder.CreateICmp(llvm.IntEQ, call, negOne, "is_eof")
	v := g.builder.CreateSelect(isEOF, llvm.ConstInt(g.i32, 0, false), call, "input_val")
	g.emitPush(v)
}

func (g *generator) lowerOutput() {
	t := g.loadTop()
	g.builder.CreateCall(g.putcharTy, g.putcharFn, []llvm.Value{t}, "")
	g.emitPop()
}

func (g *generator) lowerDup() {
	g.emitPush(g.loadTop())
}

func (g *generator) lowerSwap() {
	t := g.loadTop()
	ptr := g.secondPtr()
	second := g.builder.CreateLoad(g.i32, ptr, "second")
	g.builder.CreateStore(t, ptr)
	g.storeTop(second)
}

func (g *generator) lowerIncDec(delta int64) {
	t := g.loadTop()
	var v llvm.Value
	if delta > 0 {
		v = g.builder.CreateAdd(t, llvm.ConstInt(g.i32, uint64(delta), false), "inc")
	} else {
		v = g.builder.CreateSub(t, llvm.ConstInt(g.i32, uint64(-delta), false), "dec")
	}
	g.storeTop(v)
}

// lowerAdd: t = TOP; POP; TOP += t.
func (g *generator) lowerAdd() {
	t := g.loadTop()
	g.emitPop()
	sum := g.builder.CreateAdd(g.loadTop(), t, "add")
	g.storeTop(sum)
}

// lowerSub: a = TOP; POP; b = TOP; TOP = |a - b| (spec.md §4.2, the
// property exercised by stacksim's absolute-difference test).
func (g *generator) lowerSub() {
	a := g.loadTop()
	g.emitPop()
	b := g.loadTop()
	aGtB := g.builder.CreateICmp(llvm.IntUGT, a, b, "a_gt_b")
	diffAB := g.builder.CreateSub(a, b, "diff_ab")
	diffBA := g.builder.CreateSub(b, a, "diff_ba")
	g.storeTop(g.builder.CreateSelect(aGtB, diffAB, diffBA, "abs_diff"))
}

// lowerBottom: t = TOP; POP; write t to the bottom slot and retreat the
// bottom cursor.
func (g *generator) lowerBottom() {
	t := g.loadTop()
	g.emitPop()
	g.pushValueToBottom(t)
}

func (g *generator) pushValueToBottom(v llvm.Value) {
	idx := g.builder.CreateLoad(g.i64, g.bottom, "bottom_idx")
	g.builder.CreateStore(v, g.stackSlot(idx))
	newIdx := g.wrap64(g.builder.CreateSub(idx, llvm.ConstInt(g.i64, 1, false), "bottom_dec"))
	g.builder.CreateStore(newIdx, g.bottom)
}

func (g *generator) lowerAddToSecond(payload int32) {
	ptr := g.secondPtr()
	v := g.builder.CreateLoad(g.i32, ptr, "second")
	g.builder.CreateStore(g.builder.CreateAdd(v, g.constI32(payload), "second_add"), ptr)
}

// lowerMultiplySecond deliberately uses a plain (non-nuw) multiply:
// XRF arithmetic wraps silently on overflow, and an nuw multiply would
// hand the optimizer grounds to assume it never does.
func (g *generator) lowerMultiplySecond(payload int32) {
	ptr := g.secondPtr()
	v := g.builder.CreateLoad(g.i32, ptr, "second")
	g.builder.CreateStore(g.builder.CreateMul(v, g.constI32(payload), "second_mul"), ptr)
}

// lowerRandomize lowers Randomize as a Nop (spec.md §9's own documented
// reference behavior). Kept as its own function, separate from the Nop
// case, so a real RNG-backed lowering can replace just this one call site.
func (g *generator) lowerRandomize() {}

func (g *generator) lowerPopSecondValue() {
	idx := g.loadTopIdx()
	newIdx := g.wrap64(g.builder.CreateSub(idx, llvm.ConstInt(g.i64, 1, false), "top_dec"))
	g.builder.CreateStore(newIdx, g.top)
}

func (g *generator) lowerPushSecondValue(payload int32) {
	idx := g.loadTopIdx()
	g.builder.CreateStore(g.constI32(payload), g.stackSlot(idx))
	newIdx := g.wrap64(g.builder.CreateAdd(idx, llvm.ConstInt(g.i64, 1, false), "top_inc"))
	g.builder.CreateStore(newIdx, g.top)
}

func (g *generator) lowerPushValueToBottom(payload int32) {
	g.pushValueToBottom(g.constI32(payload))
}

func (g *generator) lowerSetSecondValue(payload int32) {
	g.builder.CreateStore(g.constI32(payload), g.secondPtr())
}

// lowerOne lowers every command except the three that alter control flow
// (Jump, Exit, IgnoreFirst/IgnoreVisited), which lowerBody handles itself
// since they end, or split, the block being lowered.
func (g *generator) lowerOne(cmd ir.Command) {
	switch cmd.Op {
	case ir.Input:
		g.lowerInput()
	case ir.Output:
		g.lowerOutput()
	case ir.Pop:
		g.emitPop()
	case ir.Dup:
		g.lowerDup()
	case ir.Swap:
		g.lowerSwap()
	case ir.Inc:
		g.lowerIncDec(1)
	case ir.Dec:
		g.lowerIncDec(-1)
	case ir.Add:
		g.lowerAdd()
	case ir.Bottom:
		g.lowerBottom()
	case ir.Sub:
		g.lowerSub()
	case ir.Nop:
		// no-op
	case ir.Randomize:
		g.lowerRandomize()
	case ir.AddToSecond:
		g.lowerAddToSecond(cmd.Payload)
	case ir.MultiplySecond:
		g.lowerMultiplySecond(cmd.Payload)
	case ir.PopSecondValue:
		g.lowerPopSecondValue()
	case ir.PushSecondValue:
		g.lowerPushSecondValue(cmd.Payload)
	case ir.PushValueToBottom:
		g.lowerPushValueToBottom(cmd.Payload)
	case ir.SetSecondValue:
		g.lowerSetSecondValue(cmd.Payload)
	case ir.SetTop:
		g.storeTop(g.constI32(cmd.Payload))
	default:
		diag.Fail("codegen: unhandled command %v", cmd.Op)
	}
}
