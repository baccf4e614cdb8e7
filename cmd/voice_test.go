package cmd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"en_US", true},
		{"de_DE", true},
		{"ja_JP", true},
		{"zh_CN", true},
		{"en", false},      // too short
		{"english", false}, // no underscore
		{"EN_US", false},   // first part should be lowercase
		{"en_us", false},   // second part should be uppercase
		{"en_USA", false},  // too long
		{"", false},
		{"12_34", false}, // not letters
		{"en-US", false}, // wrong separator
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, isLocale(tt.input))
		})
	}
}

func TestInstalledSayVoices(t *testing.T) {
	if runtime.GOOS != "darwin" {
		t.Skip("Skipping test on non-macOS platform")
	}

	resetSayVoiceCache()

	voices, err := installedSayVoices()
	require.NoError(t, err)
	assert.NotEmpty(t, voices, "expected at least one installed voice on macOS")
}

func TestSayVoiceInstalledOffMacOS(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("Skipping test on macOS")
	}

	// Availability cannot be determined, so voices are never rejected.
	installed, err := sayVoiceInstalled("Anything")
	require.NoError(t, err)
	assert.True(t, installed)
}

func TestVoiceNotInstalledHint(t *testing.T) {
	msg := voiceNotInstalledHint("Zoe (Premium)")
	assert.Contains(t, msg, "Zoe (Premium)")
	assert.Contains(t, msg, "System Settings")
}
