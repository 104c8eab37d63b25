package command

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Command is a recognized voice instruction. It has no identity beyond its
// text.
type Command string

// Default commands understood by the simulator.
const (
	TurnOnLight Command = "turn on the light"
	MoveForward Command = "move forward"
	Stop        Command = "stop"

	// EmergencyStop halts the whole simulation when executed. It is not
	// part of the default catalog.
	EmergencyStop Command = "emergency stop"
)

// String returns the command text.
func (c Command) String() string {
	return string(c)
}

// Catalog is the fixed, finite set of commands the listener can hear.
type Catalog []Command

// DefaultCatalog returns the built-in command set.
func DefaultCatalog() Catalog {
	return Catalog{TurnOnLight, MoveForward, Stop}
}

// ParseCatalog builds a catalog from plain strings, skipping blanks.
func ParseCatalog(items []string) Catalog {
	c := make(Catalog, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		c = append(c, Command(item))
	}
	return c
}

// Pick selects a command uniformly at random. It panics on an empty catalog,
// which configuration validation rules out.
func (c Catalog) Pick(rng *rand.Rand) Command {
	return c[rng.Intn(len(c))]
}

// Strings returns the catalog as plain strings.
func (c Catalog) Strings() []string {
	out := make([]string, len(c))
	for i, cmd := range c {
		out[i] = string(cmd)
	}
	return out
}

// Utterance is a single heard occurrence of a command. Two utterances may
// carry the same command; the queue delivers each utterance exactly once.
type Utterance struct {
	ID      string
	Command Command
	HeardAt time.Time
}

// NewUtterance wraps cmd with a fresh ID and the current time.
func NewUtterance(cmd Command) Utterance {
	return Utterance{
		ID:      uuid.NewString(),
		Command: cmd,
		HeardAt: time.Now(),
	}
}
