package command

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Pick(t *testing.T) {
	catalog := DefaultCatalog()
	rng := rand.New(rand.NewSource(42))

	seen := make(map[Command]int)
	for i := 0; i < 300; i++ {
		cmd := catalog.Pick(rng)
		assert.Contains(t, catalog, cmd)
		seen[cmd]++
	}

	// Every command should come up over a few hundred draws.
	assert.Len(t, seen, len(catalog))
}

func TestCatalog_PickDeterministic(t *testing.T) {
	catalog := DefaultCatalog()
	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		assert.Equal(t, catalog.Pick(a), catalog.Pick(b))
	}
}

func TestParseCatalog(t *testing.T) {
	c := ParseCatalog([]string{"stop", "", "jump"})
	assert.Equal(t, Catalog{"stop", "jump"}, c)
	assert.Equal(t, []string{"stop", "jump"}, c.Strings())
}

func TestNewUtterance(t *testing.T) {
	a := NewUtterance(Stop)
	b := NewUtterance(Stop)

	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, Stop, a.Command)
	assert.False(t, a.HeardAt.IsZero())
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(DefaultActions())

	tests := []struct {
		text string
		want Action
	}{
		{"turn on the light", ActionLightOn},
		{"Move Forward", ActionMoveForward},
		{"  STOP ", ActionStopMotor},
		{"turn light", ActionLightOn},
		{"move fwd", ActionMoveForward},
		{"Emergency Stop", ActionEmergency},
		{"dance", ActionNoop},
		{"", ActionNoop},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.text))
		})
	}
}

func TestActionsFor_CustomCatalog(t *testing.T) {
	catalog := ParseCatalog([]string{"Move Forward", "turn light on", "stop the music"})
	r := NewResolver(ActionsFor(catalog))

	// A known command keeps its action regardless of case.
	assert.Equal(t, ActionMoveForward, r.Resolve("Move Forward"))
	// Custom phrases resemble built-in ones but have no action of their own.
	assert.Equal(t, ActionNoop, r.Resolve("turn light on"))
	assert.Equal(t, ActionNoop, r.Resolve("stop the music"))
	// Built-in phrases outside the catalog are unknown.
	assert.Equal(t, ActionNoop, r.Resolve("emergency stop"))
}
