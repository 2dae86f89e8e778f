// Package naming holds the identifier rules shared by data sources,
// dimensions and measures: URL-safe sanitizing, duplicate detection across
// the shared dimension/measure namespace, and human title generation.
package naming
