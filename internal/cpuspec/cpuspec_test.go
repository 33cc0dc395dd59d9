package cpuspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformanceCores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		brand string
		want  int
	}{
		{"12th Gen Intel(R) Core(TM) i9-12900K", 8},
		{"13th Gen Intel(R) Core(TM) i5-13600K", 6},
		{"13th Gen Intel(R) Core(TM) i3-13100", 4},
		{"Intel(R) Core(TM) Ultra 7 265K", 8},
		{"Intel(R) Core(TM) Ultra 5 225", 4},
		{"Apple M1", 4},
		{"Apple M2 Max", 12},
		{"Apple M4 Pro", 10},
		{"AMD Ryzen 9 7950X 16-Core Processor", 0},
		{"Intel(R) Core(TM) i7-9700K CPU @ 3.60GHz", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.brand, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PerformanceCores(tt.brand))
		})
	}
}

func TestThreadCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		spec      CPUSpec
		available int
		want      int
	}{
		{"hybrid uses p-cores", CPUSpec{PerformanceCores: 6, LogicalCores: 20}, 20, 6},
		{"limited by available cpus", CPUSpec{PerformanceCores: 8, LogicalCores: 16}, 2, 2},
		{"logical fallback capped", CPUSpec{LogicalCores: 64}, 64, MaxThreads},
		{"unknown cpu", CPUSpec{}, 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.spec.ThreadCount(tt.available))
		})
	}

	assert.GreaterOrEqual(t, OptimalThreadCount(), 1)
}
