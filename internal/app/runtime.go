package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "PROVENDER_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

// detectTestMode reads the PROVENDER_TEST_MODE flag once. Both "1" and "true"
// are accepted since CI templates set it either way.
func detectTestMode() {
	v := os.Getenv(testModeEnv)
	testModeFlag.Store(v == "1" || v == "true")
}

// InTestMode reports whether the process should skip runtime side effects:
// the server and worker entrypoints return immediately so test binaries never
// dial Postgres or Redis.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	detectTestMode()
}
