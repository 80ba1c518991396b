package testdb

import "os"

// databaseURLVars are checked in order by GetTestDatabaseURL.
var databaseURLVars = []string{"DATABASE_URL", "GENFLOW_TEST_DB_URL", "GENFLOW_DATABASE_URL"}

// GetTestDatabaseURL returns the first non-empty database URL found in the
// environment.
func GetTestDatabaseURL() string {
	for _, name := range databaseURLVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// ShouldSkipDatabaseTest returns true when database tests cannot run.
func ShouldSkipDatabaseTest() bool {
	return !IsIntegrationTestEnvironment()
}
