// Package repository maps department and seller rows to entities and back
// using bun. Repositories accept either a *bun.DB or a bun.Tx, so the same
// code runs inside and outside an explicit transaction.
package repository
