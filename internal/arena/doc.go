// Package arena holds the currently published version of every data source
// and keeps it fresh.
//
// Each data source name owns a slot holding an immutable Version. Readers
// load the slot atomically and always observe a fully merged data source.
// Writers replace the slot with compare-and-swap, so two refresh cycles for
// the same name can never interleave their merges.
package arena
