package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandRoundTrip(t *testing.T) {
	cases := [][]string{
		{"focus", "left"},
		{"swap", "down"},
		{"move", "right"},
		{"split", "vertical"},
		{"group", "tabbed"},
		{"ungroup"},
		{"toggle-floating"},
		{"toggle-fullscreen"},
		{"resize", "right", "40"},
		{"set-weight", "0.5"},
		{"balance"},
		{"promote"},
		{"demote"},
		{"move-to-space", "3"},
		{"toggle-space-managed"},
		{"scroll", "left"},
		{"set-centering-mode", "always"},
		{"set-layout-mode", "scroll"},
		{"save-and-exit"},
		{"reload-config"},
		{"focus-window", "123/4"},
	}
	for _, words := range cases {
		cmd, err := ParseCommand(words)
		require.NoError(t, err, "%v", words)
		assert.Equal(t, words, cmd.Words(), "%v", words)
	}
}

func TestParseCommandErrors(t *testing.T) {
	bad := [][]string{
		{},
		{"focus"},
		{"focus", "sideways"},
		{"split", "diagonal"},
		{"group", "piled"},
		{"resize", "right"},
		{"resize", "right", "lots"},
		{"set-weight", "heavy"},
		{"move-to-space", "minus-one"},
		{"focus-window", "nope"},
		{"balance", "extra"},
		{"frobnicate"},
	}
	for _, words := range bad {
		_, err := ParseCommand(words)
		assert.Error(t, err, "%v", words)
	}
}

func TestTargetWindowParsing(t *testing.T) {
	cmd := Command{Window: "42/7"}
	wid, ok := cmd.TargetWindow()
	require.True(t, ok)
	assert.Equal(t, int32(42), wid.PID)
	assert.Equal(t, uint32(7), wid.Slot)

	for _, bad := range []string{"", "42", "a/b", "42/"} {
		cmd := Command{Window: bad}
		_, ok := cmd.TargetWindow()
		assert.False(t, ok, "%q", bad)
	}
}
