package testing

import (
	"os"
	"path/filepath"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("ATENDE_TEST_MODE", "1")
		defaults := map[string]string{
			"GOTENBERG_URL":       "http://127.0.0.1:0",
			"RECEIPT_STORAGE_DIR": filepath.Join(os.TempDir(), "atende-test", "recibos"),
			"LOG_LEVEL":           "warn",
		}
		for key, value := range defaults {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
