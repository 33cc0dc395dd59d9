// Package cpuspec picks an onnxruntime intra-op thread count for this machine.
package cpuspec

import (
	"regexp"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// MaxThreads caps the recommendation; offline speech models stop scaling
// well beyond this.
const MaxThreads = 8

// CPUSpec contains information about CPU specifications
type CPUSpec struct {
	BrandName        string
	PerformanceCores int
	LogicalCores     int
}

// GetCPUSpec returns the specification of the running CPU
func GetCPUSpec() CPUSpec {
	return CPUSpec{
		BrandName:        cpuid.CPU.BrandName,
		PerformanceCores: PerformanceCores(cpuid.CPU.BrandName),
		LogicalCores:     cpuid.CPU.LogicalCores,
	}
}

// OptimalThreadCount returns the recommended thread count for the running CPU
func OptimalThreadCount() int {
	return GetCPUSpec().ThreadCount(runtime.NumCPU())
}

// ThreadCount returns the recommended number of threads given the CPUs the
// process may use. Hybrid CPUs use their performance cores only.
func (c CPUSpec) ThreadCount(availableCPUs int) int {
	n := c.PerformanceCores
	if n == 0 {
		n = c.PhysicalOrLogical()
	}
	n = min(n, availableCPUs, MaxThreads)
	return max(n, 1)
}

// PhysicalOrLogical returns the logical core count, or 1 when unknown.
func (c CPUSpec) PhysicalOrLogical() int {
	if c.LogicalCores > 0 {
		return c.LogicalCores
	}
	return 1
}

var (
	intelHybridRegex = regexp.MustCompile(`intel.*(?:core.*i[3579]-(1[234]\d)\d{2}|core.*ultra\s+([579])\s+(?:processor\s+)?(\d{3}))`)
	appleRegex       = regexp.MustCompile(`apple\s+(m[1-4])(?:\s+(pro|max|ultra))?`)
)

// intelPCores maps a 12th to 14th gen model prefix (generation + tier digit
// pair, e.g. "1390" for i9-13900) to its P-core count.
var intelPCores = map[string]int{
	"129": 8, "127": 8, "126": 6, "125": 6, "124": 6, "121": 4,
	"139": 8, "137": 8, "136": 6, "135": 6, "134": 6, "131": 4,
	"149": 8, "147": 8, "146": 6, "145": 6, "144": 6, "141": 4,
}

var intelUltraPCores = map[string]int{
	"285": 8, "265": 8, "255": 8, "245": 6, "235": 6, "225": 4,
}

var applePCores = map[string]int{
	"m1": 4, "m1 pro": 8, "m1 max": 8, "m1 ultra": 16,
	"m2": 4, "m2 pro": 8, "m2 max": 12, "m2 ultra": 24,
	"m3": 4, "m3 pro": 6, "m3 max": 12, "m3 ultra": 24,
	"m4": 4, "m4 pro": 10, "m4 max": 12,
}

// PerformanceCores returns the number of performance cores for known hybrid
// CPUs and 0 for everything else.
func PerformanceCores(brandName string) int {
	brand := strings.ToLower(brandName)

	if m := intelHybridRegex.FindStringSubmatch(brand); m != nil {
		if m[1] != "" {
			// m[1] is generation plus tier, e.g. "139" from 13900
			return intelPCores[m[1]]
		}
		return intelUltraPCores[m[3]]
	}

	if m := appleRegex.FindStringSubmatch(brand); m != nil {
		chip := m[1]
		if m[2] != "" {
			chip += " " + m[2]
		}
		return applePCores[chip]
	}

	return 0
}
