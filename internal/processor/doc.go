// Package processor hosts the consumer side of the command queue. It polls
// the queue with a short timeout so cancellation is noticed between polls,
// reports each command it executes and simulates the work with a fixed
// pause.
package processor
