//go:build windows

package cmd

import (
	"golang.org/x/sys/windows"
)

// isProcessAlive checks if a process with the given PID is still running.
// Opening the process with limited query access succeeds only when it exists.
func isProcessAlive(pid int) bool {
	// Minimum access right to query basic process information,
	// available since Windows Vista.
	const PROCESS_QUERY_LIMITED_INFORMATION = 0x1000

	handle, err := windows.OpenProcess(PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	windows.CloseHandle(handle)
	return true
}
