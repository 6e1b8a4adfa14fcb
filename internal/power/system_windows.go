//go:build windows

package power

// Hibernation is switched off around SetSuspendState so the call sleeps
// instead of hibernating.
func sleepSteps() []step {
	return []step{
		{name: "powercfg", args: []string{"-h", "off"}, optional: true},
		{name: "rundll32.exe", args: []string{"powrprof.dll,SetSuspendState", "0,1,0"}},
		{name: "powercfg", args: []string{"-h", "on"}, optional: true},
	}
}

func shutdownSteps() []step {
	return []step{{name: "shutdown", args: []string{"/s", "/t", "0"}}}
}
