//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package display

import "errors"

func platformMonitors() ([]Monitor, error) {
	return nil, errors.New("monitor discovery is not supported on this platform")
}
