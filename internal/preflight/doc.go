// Package preflight provides readiness checks for the external binaries and
// filesystem paths an extraction run depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll before creating a workspace. If any hard
//     check fails, the run aborts before ffmpeg or demucs spend time on a
//     doomed job.
//   - The CLI "unmix deps" command uses the individual check functions to
//     display environment health.
package preflight
