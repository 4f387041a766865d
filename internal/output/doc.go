// Package output encodes reports and opens report destinations.
//
// MarshalReport writes check, fix and rule listings as stable JSON. OpenWriter
// compresses reports written to .gz or .zst paths.
package output
