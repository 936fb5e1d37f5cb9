package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHelpersWriteToGivenWriter(t *testing.T) {
	defer SetGlobalFlags(false, false, false)

	var buf bytes.Buffer
	SetGlobalFlags(false, false, false)
	PrintSuccess(&buf, "Saved %s", "a.json")
	PrintInfo(&buf, "Kept %s", "b.json")
	assert.Equal(t, "✓ Saved a.json\nℹ Kept b.json\n", buf.String())

	buf.Reset()
	SetGlobalFlags(false, true, false)
	PrintSuccess(&buf, "Saved")
	assert.Equal(t, "OK: Saved\n", buf.String())

	buf.Reset()
	SetGlobalFlags(true, false, false)
	PrintSuccess(&buf, "Saved")
	PrintInfo(&buf, "Kept")
	assert.Empty(t, buf.String())
}

func TestConfirm(t *testing.T) {
	defer SetGlobalFlags(false, false, false)
	SetGlobalFlags(false, false, false)

	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"y", false, true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm(strings.NewReader(tt.input), &out, "Overwrite?", tt.defaultYes)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.True(t, strings.HasPrefix(out.String(), "Overwrite? ["))
	}

	_, err := Confirm(strings.NewReader(""), &bytes.Buffer{}, "Overwrite?", false)
	assert.Error(t, err)
}

func TestConfirmSkippedWithYes(t *testing.T) {
	defer SetGlobalFlags(false, false, false)
	SetGlobalFlags(false, false, true)

	var out bytes.Buffer
	ok, err := Confirm(strings.NewReader(""), &out, "Overwrite?", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.String())
}
