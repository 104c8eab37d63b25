// Package orchestrator owns the command queue and the workers around it. It
// starts the listener, the processor and the monitor concurrently, keeps one
// cancellation signal per worker, and on shutdown cancels them all and waits
// until every one has returned.
//
// Each worker moves through Pending, Running, Cancelling and Stopped. A
// worker that returns on its own (for example because the queue closed) goes
// straight from Running to Stopped.
package orchestrator
