package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// statfsFn allows tests to stub filesystem stats.
var statfsFn = realStatfs

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace reports how much space the filesystem holding path has left.
// Falling under minBytes produces a warning, not a failure: small inputs can
// still succeed, so the run proceeds with a caution in the log.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	_, free, err := statfsFn(path)
	if err != nil {
		return Result{Name: name, Passed: true, Warning: true, Detail: fmt.Sprintf("%s (could not read filesystem stats: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s (%.1f GiB free)", path, float64(free)/(1<<30))
	if free < minBytes {
		return Result{Name: name, Passed: true, Warning: true, Detail: detail + " below recommended minimum"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
