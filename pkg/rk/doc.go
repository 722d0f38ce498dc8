// Package rk implements a small preemptive, priority-based multitasking
// kernel: fixed-priority scheduling with round-robin among equal
// priorities, semaphores, mutexes with priority inheritance, event-flag
// groups, message queues, task-private mailboxes and signals, a tick
// engine, and the ISR entry/exit bookkeeping tying it all together.
//
// Every mutation of kernel state happens inside a single critical
// section (Kernel.enterCS); callers never see partial state. The actual
// transfer of control between tasks is delegated to a Dispatcher, kept
// deliberately narrow so a port can back it with real context-switch
// assembly or, as internal/softport does, with goroutines.
package rk
