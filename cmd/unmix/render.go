package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"unmix/internal/preflight"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const (
	statusLabelWidth = 22
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "OK"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ""
	}
}

// checkLines renders preflight filesystem results as status lines.
func checkLines(checks []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(checks))
	for _, check := range checks {
		kind := statusOK
		switch {
		case check.Warning:
			kind = statusWarn
		case !check.Passed:
			kind = statusError
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
