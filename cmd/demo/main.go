// Command demo runs a small multi-task workload against the kernel on the
// host backend, printing each task's activity to stdout. It plays the
// same role as _examples/original_source/rtos/demo/main.c: a hand-built
// scenario exercised against a real target instead of against a unit
// test's fakes.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/danieldegrasse/BMOS"
	"github.com/danieldegrasse/BMOS/hal"
)

func main() {
	cfg := bmos.DefaultConfig()
	k := bmos.New(cfg, hal.NewClock(), hal.NewAllocator(), hal.NewConsole(os.Stdout), hal.NewSwitchTrigger())

	sem, err := k.CreateBinary()
	if err != nil {
		fmt.Fprintln(os.Stderr, "create semaphore:", err)
		os.Exit(1)
	}

	type box struct{ h *bmos.Task }

	// A low-priority task that spins and yields, representing background
	// work that should never starve the higher-priority producer/consumer
	// pair below.
	spinner := &box{}
	spinnerEntry := func(arg any) {
		self := arg.(*box).h
		for i := 0; ; i++ {
			if i%200000 == 0 {
				k.Log().Append(bmos.LogDebug, "spinner: tick")
			}
			self.Yield()
		}
	}
	h, err := k.TaskCreate(spinnerEntry, spinner, bmos.TaskConfig{Priority: 1, Name: "spinner"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "create spinner:", err)
		os.Exit(1)
	}
	spinner.h = h

	// A producer that periodically posts, and a consumer blocked on the
	// same semaphore: the classic S4/S5-style rendezvous.
	producer := &box{}
	producerEntry := func(arg any) {
		self := arg.(*box).h
		for i := 0; i < 5; i++ {
			self.Delay(250)
			k.Log().Append(bmos.LogInfo, fmt.Sprintf("producer: post %d", i))
			if err := sem.Post(); err != nil {
				k.Log().Append(bmos.LogError, "producer: post failed: "+err.Error())
			}
		}
	}
	h, err = k.TaskCreate(producerEntry, producer, bmos.TaskConfig{Priority: 3, Name: "producer"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "create producer:", err)
		os.Exit(1)
	}
	producer.h = h

	consumer := &box{}
	consumerEntry := func(arg any) {
		self := arg.(*box).h
		for i := 0; i < 5; i++ {
			if err := sem.Pend(self, 2000); err != nil {
				k.Log().Append(bmos.LogWarn, fmt.Sprintf("consumer: pend %d timed out", i))
				continue
			}
			k.Log().Append(bmos.LogInfo, fmt.Sprintf("consumer: received %d", i))
		}
	}
	h, err = k.TaskCreate(consumerEntry, consumer, bmos.TaskConfig{Priority: 2, Name: "consumer"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "create consumer:", err)
		os.Exit(1)
	}
	consumer.h = h

	if err := k.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "start:", err)
		os.Exit(1)
	}

	time.Sleep(2 * time.Second)
	k.Stop()
	k.Log().Flush(os.Stdout)
}
