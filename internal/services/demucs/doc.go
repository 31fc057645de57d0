// Package demucs wraps the demucs CLI, the pretrained source-separation
// model that splits the intermediate WAV into a vocals stem and an
// accompaniment stem.
//
// The client launches demucs in two-stems mode, follows its tqdm progress
// output, and locates the stem files it writes under the separation root.
// Failures are classified from tool output into the pipeline's error
// taxonomy: unknown model, unavailable device, out of memory, or a generic
// inference failure. Device selection lives here too, including the CUDA
// probe behind the auto policy.
package demucs
