//go:build cgo

// Package ortenv initializes the process-wide ONNX Runtime environment once.
package ortenv

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes ONNX Runtime. libPath overrides the shared library location when non-empty.
// Only the first call's libPath is used; later calls return the first result.
func Init(libPath string) error {
	once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			initErr = fmt.Errorf("initialize ONNX runtime: %w", err)
		}
	})
	return initErr
}

// Available reports whether this build can run ONNX models.
func Available() bool { return true }
