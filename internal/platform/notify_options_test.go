package platform

import "testing"

func TestOptionsTimeout(t *testing.T) {
	if got := (Options{}).timeout(); got != 5000 {
		t.Errorf("default timeout = %d", got)
	}
	if got := (Options{TimeoutMillis: 1200}).timeout(); got != 1200 {
		t.Errorf("timeout = %d", got)
	}
}
