//go:build !windows

package power

import "runtime"

func sleepSteps() []step {
	switch runtime.GOOS {
	case "linux":
		return []step{{name: "systemctl", args: []string{"suspend"}}}
	case "darwin":
		return []step{{name: "pmset", args: []string{"sleepnow"}}}
	default:
		return nil
	}
}

func shutdownSteps() []step {
	switch runtime.GOOS {
	case "linux":
		return []step{{name: "systemctl", args: []string{"poweroff"}}}
	case "darwin":
		return []step{{name: "shutdown", args: []string{"-h", "now"}}}
	default:
		return nil
	}
}
