package command

import (
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
)

// Action is the firmware instruction a command would be translated to. The
// simulator never sends it anywhere.
type Action string

// Known firmware actions.
const (
	ActionLightOn     Action = "LIGHT_ON"
	ActionMoveForward Action = "MOVE_FORWARD"
	ActionStopMotor   Action = "STOP_MOTOR"
	ActionEmergency   Action = "EMERGENCY_STOP"
	ActionNoop        Action = "NOOP"
)

// DefaultActions maps the default catalog to firmware actions.
func DefaultActions() map[Command]Action {
	return map[Command]Action{
		TurnOnLight:   ActionLightOn,
		MoveForward:   ActionMoveForward,
		Stop:          ActionStopMotor,
		EmergencyStop: ActionEmergency,
	}
}

// ActionsFor builds the phrase table for catalog. Commands with a default
// action keep it; any other command maps to ActionNoop, so a custom phrase
// never borrows the action of a similar-looking built-in one.
func ActionsFor(catalog Catalog) map[Command]Action {
	known := NewResolver(DefaultActions())
	table := make(map[Command]Action, len(catalog))
	for _, cmd := range catalog {
		table[cmd] = known.exact(cmd.String())
	}
	return table
}

// Resolver maps heard text to an Action. Exact (case-folded) matches win;
// otherwise the best fuzzy match over the known phrases is used.
type Resolver struct {
	mu      sync.Mutex
	fold    cases.Caser
	phrases []string
	actions map[string]Action
}

// NewResolver creates a resolver for the given phrase table.
func NewResolver(table map[Command]Action) *Resolver {
	r := &Resolver{
		fold:    cases.Fold(),
		actions: make(map[string]Action, len(table)),
	}
	for cmd, action := range table {
		key := r.fold.String(strings.TrimSpace(string(cmd)))
		r.phrases = append(r.phrases, key)
		r.actions[key] = action
	}
	sort.Strings(r.phrases)
	return r
}

func (r *Resolver) key(text string) string {
	// cases.Caser is stateful and not safe for concurrent use.
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fold.String(strings.TrimSpace(text))
}

// exact returns the action for a case-folded exact match, or ActionNoop.
func (r *Resolver) exact(text string) Action {
	if action, ok := r.actions[r.key(text)]; ok {
		return action
	}
	return ActionNoop
}

// Resolve returns the action for text, or ActionNoop when nothing matches.
func (r *Resolver) Resolve(text string) Action {
	key := r.key(text)
	if key == "" {
		return ActionNoop
	}
	if action, ok := r.actions[key]; ok {
		return action
	}

	matches := fuzzy.Find(key, r.phrases)
	if len(matches) == 0 {
		return ActionNoop
	}
	return r.actions[matches[0].Str]
}
