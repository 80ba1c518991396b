// Package testdb provides utilities for PostgreSQL integration tests: it
// locates the test database, applies the embedded migrations and isolates
// each test in a transaction that is rolled back afterwards.
//
// Integration tests opt in with the integration build tag and skip
// themselves when no database URL is configured:
//
//	//go:build integration
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        // test code using tx
//	    })
//	}
package testdb
