package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"loom/internal/deps"
)

// minFreeBytes is the floor below which a run is refused outright; a full
// batch of artifacts comfortably exceeds this.
const minFreeBytes = 1 << 30

// CheckCheckpoint verifies the model checkpoint path exists. Missing weights
// are a startup failure, never a per-record one.
func CheckCheckpoint(path string) Result {
	const name = "Checkpoint"
	if path == "" {
		return Result{Name: name, Detail: "checkpoint path not configured"}
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckManifest verifies the dataset manifest is a readable file.
func CheckManifest(path string) Result {
	const name = "Dataset manifest"
	if path == "" {
		return Result{Name: name, Detail: "manifest path not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
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

// CheckFreeSpace verifies the filesystem holding path has room for artifacts.
func CheckFreeSpace(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: only %d MiB free)", path, free>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d GiB free)", path, free>>30)}
}

// CheckFFmpeg verifies the encoding binary resolves.
func CheckFFmpeg(ffmpegBinary string) Result {
	statuses := deps.CheckBinaries(deps.Requirements(ffmpegBinary))
	status := statuses[0]
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Command}
}
