// Package cortexm sketches the real ARM Cortex-M4 context-switch glue that
// spec.md §4.3 describes: three handler entry points invoked only by the
// architectural exception mechanism (SVCall, PendSV, SysTick), and the
// initial stack frame layout a newly created task needs so its first
// restore lands in its entry function.
//
// This package is gated behind the "cortexm" build tag and is deliberately
// not wired into package bmos or exercised by any test: a portable
// `go build`-able module cannot embed real Thumb-2 assembly behind an
// unconditional import (see DESIGN.md's Context-Switch Layer entry). It
// exists to show where that glue belongs, in the same spirit as the
// teacher's own placeholders: _examples/zhoujunjun-apple-xinu-go/include/
// resched.go's ctxsw and intutils.go's Disable/Restore both print a stand-in
// message instead of touching hardware.
//
//go:build cortexm

package cortexm

// SavedFrame is the ordered sequence of words the switch handler pushes to
// an outgoing task's stack and pops from an incoming task's stack: the
// callee-saved register bank (r4-r11) followed by the exception-return
// link register value. Its layout is the contract between the TCB's saved
// stack pointer and this package; callers outside this package must not
// depend on it (spec.md §9: "do not expose the leading stack-pointer
// field's position").
type SavedFrame struct {
	R4, R5, R6, R7, R8, R9, R10, R11 uint32
	LR                               uint32
}

// InitialFrame constructs the stack layout for a newly created task so
// that its first restore from the switch handler starts running entry(arg)
// in thread mode on the process stack, per spec.md §4.3.
//
// TODO: emit the hardware exception frame (xPSR with the Thumb bit set,
// entry as the return address, exitTrampoline as LR, arg in r0, and an
// EXC_RETURN cookie selecting thread-mode/PSP) below this callee-saved
// bank, matching the teacher's documented intent in
// _examples/original_source/rtos/sys/task/task.c's SVCallHandler comments.
func InitialFrame(stackTop uintptr, entry, exitTrampoline, arg uintptr) uintptr {
	panic("cortexm: InitialFrame not implemented; real hardware backend required")
}

// Switch saves the callee-saved bank for the outgoing task, loads the
// incoming task's stack pointer, and restores its callee-saved bank.
//
// TODO: implement in Thumb-2 assembly (stmfd/ldmfd of r4-r11,lr against the
// process stack pointer), mirroring
// _examples/original_source/rtos/sys/task/task.c's PendSVHandler.
func Switch(outSP *uintptr, inSP uintptr) {
	panic("cortexm: Switch not implemented; real hardware backend required")
}

// DisableInterrupts sets PRIMASK, masking preemption. Returns the prior
// mask state so it can be restored.
//
// TODO: `cpsid i` / `mrs`, per
// _examples/original_source/rtos/sys/isr/isr.h's mask_irq.
func DisableInterrupts() uint32 {
	panic("cortexm: DisableInterrupts not implemented; real hardware backend required")
}

// RestoreInterrupts restores a previously saved PRIMASK state.
//
// TODO: `msr primask, r0` / `cpsie i`, per isr.h's unmask_irq.
func RestoreInterrupts(prev uint32) {
	panic("cortexm: RestoreInterrupts not implemented; real hardware backend required")
}
