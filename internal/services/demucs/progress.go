package demucs

import (
	"regexp"
	"strconv"
	"strings"
)

// ProgressUpdate captures separator progress output.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// tqdm redraws look like " 45%|████▌     | 120.2/267.3 [00:12<00:15]".
var tqdmPercent = regexp.MustCompile(`^\s*(\d{1,3})%\|`)

// parseProgress extracts the percentage from a tqdm redraw line. Bagged
// models emit one bar per sub-model, so percentages can restart from zero
// within a single run.
func parseProgress(line string) (ProgressUpdate, bool) {
	match := tqdmPercent.FindStringSubmatch(line)
	if match == nil {
		return ProgressUpdate{}, false
	}
	percent, err := strconv.ParseFloat(match[1], 64)
	if err != nil || percent > 100 {
		return ProgressUpdate{}, false
	}
	return ProgressUpdate{Percent: percent, Message: strings.TrimSpace(line)}, true
}
