// Package bmos implements a small preemptive real-time multitasking
// kernel for single-core ARM Cortex-M4 class microcontrollers, expressed
// as an embeddable Go library. It provides task lifecycle management,
// priority-based scheduling with optional preemption, counting and binary
// semaphores with timeouts, and stack-overflow detection. Collaborators —
// a tick source, a context-switch trigger, a memory allocator, and a
// console writer — are supplied through the hal package.
//
// This module is a Go rewrite of an embedded-C kernel; grounding for each
// component is recorded in DESIGN.md.
package bmos

import (
	"sync"
	"sync/atomic"

	"github.com/danieldegrasse/BMOS/hal"
	"github.com/danieldegrasse/BMOS/internal/ill"
)

// Kernel is the process-wide singleton design notes §9 calls for: "the
// ready-queue array, the active-task cell, and the delayed/blocked/exited
// queues are process-wide... wrap them in a single kernel-singleton with
// clear init/teardown rules."
type Kernel struct {
	cfg Config

	clock   hal.Clock
	alloc   hal.Allocator
	console hal.Console
	trigger hal.SwitchTrigger

	mu sync.Mutex

	ready   []ill.List[tcb]
	delayed ill.List[tcb]
	blocked ill.List[tcb]
	exited  ill.List[tcb]

	active *tcb
	idle   *tcb

	pendingPreempt atomic.Bool
	started        bool

	log *LogBuffer
}

// New constructs a Kernel with the given configuration and collaborators.
// It does not start scheduling; call Start for that.
func New(cfg Config, clock hal.Clock, alloc hal.Allocator, console hal.Console, trigger hal.SwitchTrigger) *Kernel {
	if cfg.NPriorities <= 1 {
		cfg.NPriorities = DefaultConfig().NPriorities
	}
	return &Kernel{
		cfg:     cfg,
		clock:   clock,
		alloc:   alloc,
		console: console,
		trigger: trigger,
		ready:   make([]ill.List[tcb], cfg.NPriorities),
		log:     NewLogBuffer(cfg.LogCapacity),
	}
}

// Start is the realization of spec.md §4.3's start handler and rtos_start:
// it creates the idle task, configures the tick source, selects the first
// active task, and hands it the baton. Calling Start twice is
// scheduler-misuse and returns ErrInUse, per spec.md §4.4's error
// taxonomy.
func (k *Kernel) Start() error {
	if k.clock == nil {
		return ErrNotInit
	}
	if k.started {
		return ErrInUse
	}
	k.started = true

	if err := k.createIdleTask(); err != nil {
		return err
	}

	if err := k.clock.Configure(k.cfg.TickHz); err != nil {
		return ErrDevice
	}
	go k.runTickLoop()

	k.trigger.SVCall()

	cs := k.enterCritical()
	first := k.selectNextActive(nil)
	cs.exit()
	first.resume <- struct{}{}
	return nil
}

// Stop halts the tick source. It does not unwind running task goroutines;
// the kernel is designed to run for the lifetime of the process, matching
// spec.md §6's "persisted state: none, the kernel is volatile."
func (k *Kernel) Stop() {
	if k.clock != nil {
		k.clock.Stop()
	}
}

// Log exposes the kernel's diagnostic buffer so callers (and the demo
// harness) can append their own lines alongside the kernel's.
func (k *Kernel) Log() *LogBuffer {
	return k.log
}
