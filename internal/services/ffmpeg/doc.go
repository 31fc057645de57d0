// Package ffmpeg wraps the ffmpeg CLI for the two conversions the pipeline
// needs: decoding arbitrary media into the intermediate stereo 44.1 kHz WAV
// the separator expects, and compressing finished stem WAVs into MP3s.
//
// Progress is read from ffmpeg's -progress key=value stream and reported as
// typed updates. Tests can swap in a fake Executor to avoid launching the
// real binary while still exercising argument construction and error paths.
package ffmpeg
