package platform

import (
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessName returns the executable name of pid, or "" when it cannot be
// read (the process exited, or belongs to another host).
func ProcessName(pid int) string {
	if pid <= 0 {
		return ""
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}
