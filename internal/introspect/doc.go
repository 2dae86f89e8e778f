// Package introspect lists the attributes an underlying store exposes for a
// data source. Static reads them from a YAML catalog file; SQL asks a
// database through database/sql.
package introspect
