package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor_VisitsEveryIndexOnce(t *testing.T) {
	cfgs := []Config{
		{Enabled: false},
		{Enabled: true, NumWorkers: 1},
		{Enabled: true, NumWorkers: 4, MinChunkSize: 1},
		{Enabled: true, NumWorkers: 16, MinChunkSize: 2},
		DefaultConfig(),
	}
	for _, cfg := range cfgs {
		const n = 37
		var counts [n]int32
		For(n, func(i int) {
			atomic.AddInt32(&counts[i], 1)
		}, cfg)
		for i, c := range counts {
			if c != 1 {
				t.Errorf("cfg %+v: index %d visited %d times", cfg, i, c)
			}
		}
	}
}

func TestFor_ZeroItems(t *testing.T) {
	called := false
	For(0, func(int) { called = true }, DefaultConfig())
	if called {
		t.Error("callback invoked for empty range")
	}
}

func TestFor_SmallRangeRunsSequential(t *testing.T) {
	// Below MinChunkSize the indices run in order on the calling goroutine.
	var order []int
	For(3, func(i int) { order = append(order, i) },
		Config{Enabled: true, NumWorkers: 8, MinChunkSize: 10})
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("sequential fallback order = %v", order)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.NumWorkers < 1 {
		t.Errorf("NumWorkers = %d", cfg.NumWorkers)
	}
	if cfg.MinChunkSize != 1 {
		t.Errorf("MinChunkSize = %d", cfg.MinChunkSize)
	}
}
