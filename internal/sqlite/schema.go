// Package sqlite implements a catalog archive stored in a single SQLite
// database: partitions and their text dumps are rows keyed by container path.
package sqlite

// Schema DDL. Statements are idempotent so Open can run them on every start.
const (
	createResources = `CREATE TABLE IF NOT EXISTS resources (
    name TEXT PRIMARY KEY,
    revision TEXT NOT NULL,
    data BLOB NOT NULL,
    size INTEGER NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxResourcesRevision = `CREATE INDEX IF NOT EXISTS idx_resources_revision ON resources(revision);`
)

// schemaDDL lists all statements in execution order.
var schemaDDL = []string{
	createResources,
	idxResourcesRevision,
}
