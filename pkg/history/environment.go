package history

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// CaptureEnvironment records facts about the executing machine into the
// history metadata, so a saved run can be traced back to the hardware it
// ran on. Probes that fail simply leave their keys out; this never fails
// the caller.
//
// Keys written: hostname, os, platform, kernel_version, cpu_logical,
// cpu_physical, mem_total_bytes, mem_available_bytes, go_version.
func (h *History) CaptureEnvironment() {
	if info, err := host.Info(); err == nil {
		h.metadata["hostname"] = info.Hostname
		h.metadata["os"] = info.OS
		h.metadata["platform"] = info.Platform
		h.metadata["kernel_version"] = info.KernelVersion
	}

	if n, err := cpu.Counts(true); err == nil {
		h.metadata["cpu_logical"] = n
	}
	if n, err := cpu.Counts(false); err == nil {
		h.metadata["cpu_physical"] = n
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		h.metadata["mem_total_bytes"] = vm.Total
		h.metadata["mem_available_bytes"] = vm.Available
	}

	h.metadata["go_version"] = runtime.Version()
}
