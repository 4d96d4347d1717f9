package systems

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina-go/core/command"
	"lumina-go/core/event"
)

func quiet() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCombat_DamageAndHeal(t *testing.T) {
	c := NewCombat(quiet(), map[string]int{"hero": 20})

	dmg := event.NewDamage(event.PriorityHigh, "hero", 12)
	require.True(t, c.CanHandle(dmg))
	assert.True(t, c.OnEvent(dmg))

	heal := event.NewHeal(event.PriorityNormal, "hero", 5)
	assert.True(t, c.OnEvent(heal))

	hp, ok := c.Health("hero")
	require.True(t, ok)
	assert.Equal(t, 13, hp)
	assert.Empty(t, c.TakeDefeated())
}

func TestCombat_DefeatRecordedNotDispatched(t *testing.T) {
	c := NewCombat(quiet(), map[string]int{"slime": 5})

	assert.True(t, c.OnEvent(event.NewDamage(event.PriorityHigh, "slime", 9)))

	// The kill is recorded for the runtime to publish later, and the
	// record is consumed by the read.
	assert.Equal(t, []string{"slime"}, c.TakeDefeated())
	assert.Empty(t, c.TakeDefeated())

	// The defeat event removes the entity from the table.
	assert.True(t, c.OnEvent(event.NewEntityDefeated(event.PriorityHigh, "slime", "hero")))
	_, ok := c.Health("slime")
	assert.False(t, ok)
}

func TestCombat_IgnoresUnknownTargets(t *testing.T) {
	c := NewCombat(quiet(), map[string]int{"hero": 20})

	assert.False(t, c.CanHandle(event.NewDamage(event.PriorityHigh, "ghost", 3)))
	assert.False(t, c.CanHandle(event.NewKeyPressed(event.PriorityNormal, "W", event.KeyActionPress)))

	c.Spawn("ghost", 7)
	assert.True(t, c.CanHandle(event.NewDamage(event.PriorityHigh, "ghost", 3)))
}

func TestInput_KeyBindings(t *testing.T) {
	in := NewInput(quiet())

	tests := []struct {
		key  string
		want command.Command
	}{
		{"W", &command.Move{DY: moveStep}},
		{"S", &command.Move{DY: -moveStep}},
		{"A", &command.Move{DX: -moveStep}},
		{"D", &command.Move{DX: moveStep}},
		{"Space", &command.TogglePause{}},
		{"Escape", &command.Quit{Reason: "escape pressed"}},
	}

	for _, tt := range tests {
		ev := event.NewKeyPressed(event.PriorityNormal, tt.key, event.KeyActionPress)
		require.True(t, in.CanHandle(ev), "key %s", tt.key)
		assert.True(t, in.OnEvent(ev))
	}

	cmds := in.Drain()
	require.Len(t, cmds, len(tests))
	for i, tt := range tests {
		assert.Equal(t, tt.want, cmds[i])
	}
	assert.Empty(t, in.Drain())
}

func TestInput_IgnoresReleasesAndUnboundKeys(t *testing.T) {
	in := NewInput(quiet())

	assert.False(t, in.CanHandle(event.NewKeyPressed(event.PriorityNormal, "W", event.KeyActionRelease)))
	assert.False(t, in.CanHandle(event.NewKeyPressed(event.PriorityNormal, "F13", event.KeyActionPress)))
	assert.False(t, in.CanHandle(event.NewCursorMoved(event.PriorityLow, 1, 2)))
}

func TestInput_WindowClosedBecomesQuit(t *testing.T) {
	in := NewInput(quiet())

	ev := event.NewWindowClosed(event.PriorityCritical)
	require.True(t, in.CanHandle(ev))
	assert.True(t, in.OnEvent(ev))

	cmds := in.Drain()
	require.Len(t, cmds, 1)
	quit, ok := cmds[0].(*command.Quit)
	require.True(t, ok)
	assert.Equal(t, "window closed", quit.Reason)
}

func TestAudit_ObservesWithoutConsuming(t *testing.T) {
	a := NewAudit(quiet())

	assert.True(t, a.CanHandle(event.NewHeal(event.PriorityNormal, "hero", 1)))
	assert.False(t, a.OnEvent(event.NewHeal(event.PriorityNormal, "hero", 1)))
	assert.False(t, a.OnEvent(event.NewWindowClosed(event.PriorityCritical)))
	assert.Equal(t, 2, a.Count())
}
