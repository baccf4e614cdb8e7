package cmd

import (
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Installed say voices, probed once per process via `say -v?`.
var sayVoices struct {
	once  sync.Once
	names map[string]bool
	err   error
}

// installedSayVoices parses `say -v?` output into the set of installed
// voice names. Each line is "<voice name> <locale> # <sample>"; the
// voice name runs up to the first locale-looking column and may itself
// contain spaces and parentheses.
func installedSayVoices() (map[string]bool, error) {
	sayVoices.once.Do(func() {
		sayVoices.names = make(map[string]bool)

		if runtime.GOOS != "darwin" {
			return
		}

		out, err := exec.Command("/usr/bin/say", "-v?").Output()
		if err != nil {
			sayVoices.err = err
			return
		}

		for line := range strings.SplitSeq(string(out), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}

			nameFields := fields[:1]
			for i, field := range fields {
				if isLocale(field) {
					nameFields = fields[:i]
					break
				}
			}
			if len(nameFields) == 0 {
				nameFields = fields[:1]
			}

			sayVoices.names[strings.Join(nameFields, " ")] = true
		}
	})

	return sayVoices.names, sayVoices.err
}

// isLocale reports whether s looks like a locale code (e.g. en_US, ja_JP).
func isLocale(s string) bool {
	if len(s) != 5 {
		return false
	}
	return s[0] >= 'a' && s[0] <= 'z' &&
		s[1] >= 'a' && s[1] <= 'z' &&
		s[2] == '_' &&
		s[3] >= 'A' && s[3] <= 'Z' &&
		s[4] >= 'A' && s[4] <= 'Z'
}

// sayVoiceInstalled reports whether the named voice is installed. Off
// macOS availability cannot be determined, so the voice is not rejected;
// the same goes for a failed probe (non-nil error).
func sayVoiceInstalled(name string) (bool, error) {
	if runtime.GOOS != "darwin" {
		return true, nil
	}
	voices, err := installedSayVoices()
	if err != nil {
		return false, err
	}
	return voices[name], nil
}

// voiceNotInstalledHint returns a user-facing message for missing voices.
func voiceNotInstalledHint(name string) string {
	return "Voice \"" + name + "\" is not installed. " +
		"To download additional voices, go to: System Settings → Accessibility → Spoken Content → System Voice → Manage Voices"
}

// resetSayVoiceCache is used by tests to reset the probed voice data.
func resetSayVoiceCache() {
	sayVoices.once = sync.Once{}
	sayVoices.names = nil
	sayVoices.err = nil
}
