// Package goroutine provides utilities for safely launching goroutines with panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

// SafeGo launches fn in a goroutine. A panic is logged with its stack trace
// instead of crashing the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go run(log, name, fn)
}

func run(log logger.Interface, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("goroutine panicked",
				"goroutine", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

// Tracker launches panic-safe goroutines and lets the owner wait for them to finish.
type Tracker struct {
	log logger.Interface
	wg  sync.WaitGroup
}

// NewTracker creates a Tracker that logs panics to log.
func NewTracker(log logger.Interface) *Tracker {
	return &Tracker{log: log}
}

// Go runs fn like SafeGo and records it as in flight.
func (t *Tracker) Go(name string, fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		run(t.log, name, fn)
	}()
}

// Wait blocks until every goroutine started by Go has returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
