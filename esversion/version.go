// Package esversion holds the process-wide macOS version the recorder is
// certified against. Version-gated record fields consult a snapshot of this
// value taken at decode time, not the live value.
package esversion

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Endpoint security shipped with 10.15.0; nothing older can deliver messages.
const (
	MinMajor = 10
	MinMinor = 15
	MinPatch = 0
)

var (
	major atomic.Uint32
	minor atomic.Uint32
	patch atomic.Uint32
)

func init() {
	major.Store(MinMajor)
	minor.Store(MinMinor)
	patch.Store(MinPatch)
}

// Set records the macOS version the program runs against. It panics if the
// version predates endpoint security; there is no meaningful way to continue
// from that configuration.
func Set(maj, min, pat uint32) {
	if compare(maj, min, pat, MinMajor, MinMinor, MinPatch) < 0 {
		panic(fmt.Sprintf("esversion: %d.%d.%d is below the minimum supported release %d.%d.%d",
			maj, min, pat, MinMajor, MinMinor, MinPatch))
	}
	major.Store(maj)
	minor.Store(min)
	patch.Store(pat)
}

// Parse interprets a macOS release string as the kernel reports it through
// kern.osproductversion: "major.minor" or "major.minor.patch". A missing
// patch component reads as zero.
func Parse(s string) (maj, min, pat uint32, err error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("esversion: malformed release %q", s)
	}
	var nums [3]uint32
	for i, part := range parts {
		n, convErr := strconv.ParseUint(part, 10, 32)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("esversion: malformed release %q", s)
		}
		nums[i] = uint32(n)
	}
	return nums[0], nums[1], nums[2], nil
}

// Get returns the currently configured version tuple.
func Get() (maj, min, pat uint32) {
	return major.Load(), minor.Load(), patch.Load()
}

// AtLeast reports whether the configured version is maj.min.pat or newer.
func AtLeast(maj, min, pat uint32) bool {
	cmaj, cmin, cpat := Get()
	return compare(cmaj, cmin, cpat, maj, min, pat) >= 0
}

func compare(amaj, amin, apat, bmaj, bmin, bpat uint32) int {
	switch {
	case amaj != bmaj:
		if amaj < bmaj {
			return -1
		}
		return 1
	case amin != bmin:
		if amin < bmin {
			return -1
		}
		return 1
	case apat != bpat:
		if apat < bpat {
			return -1
		}
		return 1
	}
	return 0
}
