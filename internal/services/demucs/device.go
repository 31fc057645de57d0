package demucs

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"unmix/internal/services"
)

// Device names accepted on the CLI and in config.
const (
	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
	DeviceMPS  = "mps"
)

const cudaProbeTimeout = 5 * time.Second

// cudaProbe reports whether a usable CUDA device is visible. Package
// variable so tests can stub the hardware probe.
var cudaProbe = detectCUDA

// ResolveDevice maps the requested device to the one handed to demucs.
// auto probes for CUDA and falls back to CPU. An explicit request for
// hardware that is not present fails instead of silently downgrading.
func ResolveDevice(ctx context.Context, requested string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "", DeviceAuto:
		if cudaProbe(ctx) {
			return DeviceCUDA, nil
		}
		return DeviceCPU, nil
	case DeviceCPU:
		return DeviceCPU, nil
	case DeviceCUDA:
		if !cudaProbe(ctx) {
			return "", services.Wrap(services.ErrDeviceUnavailable, "separate", "resolve device",
				"cuda requested but no CUDA device detected (nvidia-smi probe failed); use --device auto or cpu", nil)
		}
		return DeviceCUDA, nil
	case DeviceMPS:
		if runtime.GOOS != "darwin" || runtime.GOARCH != "arm64" {
			return "", services.Wrap(services.ErrDeviceUnavailable, "separate", "resolve device",
				fmt.Sprintf("mps requires an Apple Silicon host, running on %s/%s", runtime.GOOS, runtime.GOARCH), nil)
		}
		return DeviceMPS, nil
	default:
		return "", fmt.Errorf("unknown device %q (expected auto, cpu, cuda, or mps)", requested)
	}
}

func detectCUDA(ctx context.Context) bool {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, cudaProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, path, "-L").Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "GPU")
}
