// Package pipeline orchestrates the five stages that turn one input file
// into a vocals MP3 and an instrumental MP3: decode to the intermediate
// WAV, separate stems, serialize stem buffers, encode MP3s, and publish
// the pair into the output directory.
//
// Stages run sequentially on a per-job workspace that is cleaned on every
// exit path. Each stage tags the context so log lines carry job_id and
// stage fields.
package pipeline
