package app

import (
	"os"
	"strconv"
	"sync"
)

// TestModeEnv switches binaries into test mode: servers and workers return
// before touching Postgres or Redis and the request logger stays quiet.
const TestModeEnv = "USERHUB_TEST_MODE"

// InTestMode reports whether TestModeEnv holds a true value. The variable is
// read once per process.
var InTestMode = sync.OnceValue(func() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
})
