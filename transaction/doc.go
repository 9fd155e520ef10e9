
// Package transaction runs groups of statements as one unit of work.
//
// Every statement runs on the same transaction. The transaction commits only
// when all of them succeed; otherwise it is rolled back and the caller gets a
// *database.DataAccessError. When the rollback itself fails, the rollback
// error replaces the statement error as the reported cause.
package transaction
