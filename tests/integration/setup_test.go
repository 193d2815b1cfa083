package integration

import (
	"os"
	"testing"

	"github.com/taskhive/taskhive-api/tests/testutil"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// setupTest creates a test database and returns it with fixtures attached
func setupTest(t *testing.T) (*testutil.TestDB, *testutil.Fixtures) {
	t.Helper()
	tdb := testutil.SetupTestDB(t)
	return tdb, testutil.NewFixtures(tdb.DB)
}
