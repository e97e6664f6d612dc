package history

// Package history keeps a SQLite ledger of completed downloads so produced
// files can be inspected and bulk-deleted after the fact.
