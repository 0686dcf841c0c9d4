package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("LATTICE_TEST_MODE") == "" {
			_ = os.Setenv("LATTICE_TEST_MODE", "1")
		}
	})
}
