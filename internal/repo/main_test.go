package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/vereda-tours/testutil"
)

// TestMain migrates the test database once per test binary when one is
// configured. Without it only the memory and pgxmock tests do real work;
// the integration tests skip themselves.
func TestMain(m *testing.M) {
	if dsn := os.Getenv(testutil.DSNEnv); dsn != "" {
		if err := testutil.Migrate(context.Background(), dsn); err != nil {
			log.Fatalf("TestMain: %v", err)
		}
	}
	os.Exit(m.Run())
}
