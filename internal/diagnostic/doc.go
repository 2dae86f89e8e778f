// Package diagnostic provides structured advisory messages produced while
// reconciling data sources.
//
// Key capabilities:
//   - Synthesis skips (name collisions, unsupported attribute types)
//   - Attribute renames applied for URL safety
//   - Per-data-source load failures when many sources are loaded at once
package diagnostic
