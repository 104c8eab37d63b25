// Package command defines the voice commands exchanged between the listener
// and the processor, the fixed catalog they are drawn from, and the mapping
// from heard text to the simulated firmware action it would trigger.
package command
