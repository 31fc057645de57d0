// Package ffprobe wraps ffprobe JSON inspection of media containers.
//
// The pipeline probes the input before decoding to learn its duration, which
// drives progress percentages during the decode stage. Probe failures are not
// fatal: any file ffmpeg can decode is acceptable whether or not ffprobe
// understood it first.
package ffprobe
