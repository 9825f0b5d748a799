package bcd

import "golang.org/x/sys/cpu"

// Select picks a [Backend] based on a one-time CPU capability probe. The
// SWAR back-end processes eight bytes per iteration using native 64-bit
// arithmetic and benefits from a wide ALU; we gate it on the same
// AVX2-or-better generation of hardware that would also carry BMI2, since a
// genuine PDEP/PEXT fast path (unavailable in pure Go, see [SWAR]) would be
// gated the same way. Older hardware, and non-amd64 platforms where the probe
// is always false, get the table-driven [Lookup] back-end instead.
//
// All back-ends produce byte-identical output; Select only affects
// throughput.
func Select() Backend {
	if cpu.X86.HasAVX2 && cpu.X86.HasBMI2 {
		return SWAR{}
	}
	return Lookup{}
}
