// Package guard forces PROVENDER_TEST_MODE on for any test binary that
// imports it, so entrypoint code paths under test never dial Postgres, Redis
// or the asynq queue.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PROVENDER_TEST_MODE") == "" {
			_ = os.Setenv("PROVENDER_TEST_MODE", "1")
		}
	})
}
