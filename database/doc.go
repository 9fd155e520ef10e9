// Package database owns the single shared connection, its configuration,
// logging and query hooks, SQL script execution, and the two error kinds
// returned by the data access layer.
package database
