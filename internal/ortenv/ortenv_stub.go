//go:build !cgo

package ortenv

import "errors"

// ErrNoCGO is returned by Init in builds without CGO.
var ErrNoCGO = errors.New("ONNX runtime requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// Init always fails without CGO.
func Init(_ string) error { return ErrNoCGO }

// Available reports whether this build can run ONNX models.
func Available() bool { return false }
