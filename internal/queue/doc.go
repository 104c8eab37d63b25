// Package queue provides the command queue shared by the listener and the
// processor. It is an unbounded FIFO: enqueue never blocks, and dequeue waits
// for at most a caller-supplied timeout so consumers can observe cancellation
// between polls.
package queue
