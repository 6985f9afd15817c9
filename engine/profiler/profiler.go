// Package profiler tracks frame rate and memory statistics for the render
// loop and reports them through the engine logger at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	wtvr3d "github.com/wtvr-engine/wtvr3d"
)

// Profiler accumulates per-frame timing and reports FPS plus heap stats
// once per interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
}

// NewProfiler creates a profiler with a one second reporting interval.
//
// Returns:
//   - *Profiler: the newly created profiler
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Tick records one frame and logs the accumulated statistics when the
// reporting interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	wtvr3d.Logger().Info("frame stats",
		"fps", fps,
		"heap_mb", float64(p.memStats.Alloc)/1024/1024,
		"alloc_rate_mb_s", float64(allocDelta)/1024/1024/elapsed.Seconds(),
		"gc_count", p.memStats.NumGC,
		"sys_mb", float64(p.memStats.Sys)/1024/1024,
	)

	p.frameCount = 0
	p.lastTime = now
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
