package main

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// stageProgress renders one terminal progress bar at a time, replacing it
// whenever the pipeline enters a new stage. Observe may be called from the
// subprocess reader goroutine, so all bar access is under the mutex.
type stageProgress struct {
	out io.Writer

	mu    sync.Mutex
	stage string
	bar   *progressbar.ProgressBar
}

// newStageProgress returns nil unless out is an interactive terminal; callers
// treat nil as "log-only progress".
func newStageProgress(out io.Writer) *stageProgress {
	if !shouldColorize(out) {
		return nil
	}
	return &stageProgress{out: out}
}

// Observe implements pipeline.ProgressFunc.
func (s *stageProgress) Observe(stage string, percent float64) {
	if percent < 0 {
		return
	}
	if percent > 100 {
		percent = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar == nil || stage != s.stage {
		s.clearLocked()
		s.stage = stage
		s.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(s.out),
			progressbar.OptionSetDescription(stage),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = s.bar.Set(int(percent))
}

// Finish erases the current bar so the run summary starts on a clean line.
func (s *stageProgress) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *stageProgress) clearLocked() {
	if s.bar == nil {
		return
	}
	_ = s.bar.Clear()
	s.bar = nil
}
