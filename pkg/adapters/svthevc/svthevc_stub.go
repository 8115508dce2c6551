//go:build !cgo || !svthevc

// Package svthevc binds the SVT-HEVC encoder library to the core encoder
// port. The library is linked only when built with the svthevc tag.
package svthevc

import (
	"fmt"

	"github.com/user/encbridge/pkg/ports"
)

// New reports that hardware-assisted encoding is unavailable in this build.
func New(log ports.Logger) (ports.CoreEncoder, error) {
	return nil, fmt.Errorf("built without SVT-HEVC support (rebuild with -tags svthevc)")
}
