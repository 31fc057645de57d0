package demucs

import (
	"bufio"
	"reflect"
	"strings"
	"testing"
)

func TestParseProgress(t *testing.T) {
	cases := []struct {
		line    string
		percent float64
		ok      bool
	}{
		{"  0%|          | 0.0/267.3 [00:00<?, ?seconds/s]", 0, true},
		{" 45%|████▌     | 120.2/267.3 [00:12<00:15,  9.65seconds/s]", 45, true},
		{"100%|██████████| 267.3/267.3 [00:27<00:00,  9.75seconds/s]", 100, true},
		{"7%|▋         | 18.7/267.3 [00:02<00:25,  9.70seconds/s]", 7, true},
		{"245%|broken", 0, false},
		{"Separating track song.wav", 0, false},
		{"Selected model is a bag of 1 models", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		update, ok := parseProgress(tc.line)
		if ok != tc.ok {
			t.Fatalf("parseProgress(%q) ok=%v, want %v", tc.line, ok, tc.ok)
		}
		if ok && update.Percent != tc.percent {
			t.Fatalf("parseProgress(%q) percent=%f, want %f", tc.line, update.Percent, tc.percent)
		}
	}
}

func TestScanConsoleLines(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader(" 10%|█\r 20%|██\r\nSeparating\nlast"))
	scanner.Split(scanConsoleLines)

	var tokens []string
	for scanner.Scan() {
		if text := scanner.Text(); text != "" {
			tokens = append(tokens, text)
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanner error: %v", err)
	}
	want := []string{" 10%|█", " 20%|██", "Separating", "last"}
	if !reflect.DeepEqual(tokens, want) {
		t.Fatalf("expected tokens %q, got %q", want, tokens)
	}
}

func TestScanConsoleLinesTrailingCarriageReturn(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("only\r"))
	scanner.Split(scanConsoleLines)
	if !scanner.Scan() {
		t.Fatal("expected one token")
	}
	if scanner.Text() != "only" {
		t.Fatalf("expected %q, got %q", "only", scanner.Text())
	}
	if scanner.Scan() {
		t.Fatalf("expected end of input, got %q", scanner.Text())
	}
}
