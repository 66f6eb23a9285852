// Package testing puts any test binary that imports it into test mode and
// fills in configuration the binaries refuse to start without.
package testing

import (
	"os"
	stdtesting "testing"
)

var defaults = map[string]string{
	"USERHUB_TEST_MODE": "1",
	"JWT_SIGNER_KEY":    "test-signing-key-0123456789abcdef0123456789",
	"LOG_FORMAT":        "json",
}

func init() {
	for key, value := range defaults {
		if key == "USERHUB_TEST_MODE" || os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}

// TestMain can be delegated to from packages that want the defaults applied
// before flag parsing.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
