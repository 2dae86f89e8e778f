// Package datasource is the schema reconciliation engine.
//
// A DataSource is the declarative description of a queryable dataset: its
// attribute catalog, the dimensions and measures exposed to the user and a
// handful of defaults. This package builds data sources from persisted
// configuration (migrating the legacy shape first), reports validation
// issues, deduces an attribute catalog from expressions alone and merges
// freshly introspected attributes into an existing data source.
//
// Every operation is a pure function: a DataSource is never modified after
// construction and transforms return a new value.
package datasource
