// Package sync provides the spinlock that serializes access to the console.
package sync

import (
	"kfs/kernel"
	"kfs/kernel/kfmt"
	"sync/atomic"
)

const (
	// attemptsBeforeYielding controls how many times Acquire spins on a
	// held lock before invoking yieldFn.
	attemptsBeforeYielding = 64

	// maxSpins bounds the wait for a held lock when there is nothing to
	// yield to.
	maxSpins = 1 << 20
)

var (
	errDeadlock = &kernel.Error{Module: "sync", Message: "lock is held by the only running task"}

	// yieldFn is invoked while spinning on a contended lock. The kernel has
	// no scheduler, so it defaults to nil.
	yieldFn func()

	// deadlockFn is invoked when Acquire gives up on a held lock.
	deadlockFn = func() { kfmt.Panic(errDeadlock) }
)

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available.
//
// The console runs as a single task on a single CPU. Without a yield hook
// nothing else can release a held lock, so a lock that is still held after
// maxSpins attempts is reported as a deadlock instead of hanging the machine
// silently. This typically means a lock holder re-entered its own lock.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
func (l *Spinlock) Acquire() {
	for attempt := uint32(1); !atomic.CompareAndSwapUint32(&l.state, 0, 1); attempt++ {
		if yieldFn != nil {
			if attempt%attemptsBeforeYielding == 0 {
				yieldFn()
			}
			continue
		}

		if attempt == maxSpins {
			deadlockFn()
			return
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.CompareAndSwapUint32(&l.state, 0, 1)
}

// Held reports whether the lock is currently held.
func (l *Spinlock) Held() bool {
	return atomic.LoadUint32(&l.state) == 1
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}
