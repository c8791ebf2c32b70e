// Package metadata stores small string values (the persisted token pair)
// in the metadata table of the local SQLite database.
package metadata
