// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/cpu"
	"k8s.io/klog/v2"
)

// HostProfileName is the name used to Lookup the profile of the running machine.
const HostProfileName = "host"

// hostScratchpadBytes is the scratchpad stand-in for a CPU core: a typical per-core L2 slice.
const hostScratchpadBytes = 256 * 1024

// Host returns a profile describing the machine running the program, used to run plans with the
// reference kernel: one execution unit per CPU, the per-core L2 as scratchpad and the widest
// vector extension detected. Thresholds are left unset, as in Lookup.
func Host() Profile {
	p := Profile{
		Name:            HostProfileName,
		NumUnits:        runtime.NumCPU(),
		ScratchpadBytes: hostScratchpadBytes,
		CacheLineBytes:  int(unsafe.Sizeof(cpu.CacheLinePad{})),
		VectorBytes:     hostVectorBytes(),
	}
	klog.V(2).Infof("host hardware profile: %s", p)
	return p
}

// hostVectorBytes returns the width of the widest vector registers available.
func hostVectorBytes() int {
	switch runtime.GOARCH {
	case "amd64":
		switch {
		case cpu.X86.HasAVX512F:
			return 64
		case cpu.X86.HasAVX2, cpu.X86.HasAVX:
			return 32
		}
		return 16
	case "arm64":
		// SVE width is only known at runtime through the vector length registers, NEON is 128 bits.
		return 16
	}
	return 8
}
