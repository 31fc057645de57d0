package ffmpeg

import (
	"strconv"
	"strings"
	"time"
)

// progressParser consumes the key=value stream ffmpeg writes under
// -progress pipe:1. Each block ends with a progress=continue or
// progress=end line, at which point an update is emitted.
type progressParser struct {
	total   time.Duration
	outTime time.Duration
	speed   string
}

func newProgressParser(total time.Duration) *progressParser {
	if total < 0 {
		total = 0
	}
	return &progressParser{total: total}
}

// Feed consumes one output line. It reports whether the line belonged to the
// progress stream; unclaimed lines are ffmpeg diagnostics. emit is invoked
// once per completed block and may be nil.
func (p *progressParser) Feed(line string, emit func(Progress)) bool {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !isProgressKey(key) {
		return false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// out_time_ms carries microseconds despite the name, mirroring
		// out_time_us.
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			p.outTime = time.Duration(us) * time.Microsecond
		}
	case "out_time":
		if d, ok := parseOutTime(value); ok {
			p.outTime = d
		}
	case "speed":
		p.speed = value
	case "progress":
		if emit != nil {
			emit(p.snapshot(value == "end"))
		}
	}
	return true
}

func (p *progressParser) snapshot(done bool) Progress {
	update := Progress{Percent: -1, OutTime: p.outTime, Speed: p.speed, Done: done}
	if p.total > 0 {
		percent := p.outTime.Seconds() / p.total.Seconds() * 100
		if percent > 100 || done {
			percent = 100
		}
		if percent < 0 {
			percent = 0
		}
		update.Percent = percent
	}
	return update
}

func isProgressKey(key string) bool {
	switch key {
	case "frame", "fps", "bitrate", "total_size",
		"out_time_us", "out_time_ms", "out_time",
		"dup_frames", "drop_frames", "speed", "progress":
		return true
	}
	return strings.HasPrefix(key, "stream_")
}

// parseOutTime reads ffmpeg's HH:MM:SS.micro timestamps. Some demuxers emit
// negative timestamps before the first packet; those are skipped.
func parseOutTime(s string) (time.Duration, bool) {
	if s == "" || s == "N/A" || strings.HasPrefix(s, "-") {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	return d, true
}
