package onnx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	onnxrt "github.com/yalue/onnxruntime_go"
)

// EnvLibraryPath overrides the ONNX Runtime shared library location.
const EnvLibraryPath = "TAGGO_ONNXRUNTIME_LIB"

// EnsureRuntime locates the ONNX Runtime shared library and initializes the
// environment. Safe to call more than once.
func EnsureRuntime() error {
	if onnxrt.IsInitialized() {
		return nil
	}
	if err := setLibraryPath(); err != nil {
		return fmt.Errorf("failed to locate ONNX Runtime library: %w", err)
	}
	if err := onnxrt.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}
	return nil
}

func setLibraryPath() error {
	if path := os.Getenv(EnvLibraryPath); path != "" {
		onnxrt.SetSharedLibraryPath(path)
		return nil
	}
	if path := findSystemLibraryPath(); path != "" {
		onnxrt.SetSharedLibraryPath(path)
		return nil
	}
	return errors.New("onnxruntime shared library not found; set " + EnvLibraryPath)
}

// findSystemLibraryPath checks common system locations for the library.
func findSystemLibraryPath() string {
	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/usr/local/lib/libonnxruntime.dylib",
			"/opt/homebrew/lib/libonnxruntime.dylib",
		}
	case "windows":
		candidates = []string{
			filepath.Join(os.Getenv("ProgramFiles"), "onnxruntime", "lib", "onnxruntime.dll"),
			"onnxruntime.dll",
		}
	default:
		candidates = []string{
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
			"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
		}
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
