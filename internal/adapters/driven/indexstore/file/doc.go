// Package file persists document indices on the local filesystem.
//
// Each store id owns a directory under <root>/stores holding three files:
//
//	index_manifest.json  metadata, dimension and chunk count
//	chunks.jsonl         one chunk per line, in vector order
//	vectors.f32          little-endian float32, count*dim values
//
// A build is written to a temporary directory and swapped into place with
// renames, so a crash never exposes a half-written store. Stores are guarded
// by advisory file locks shared with other processes, and the course registry
// (<root>/registry.json) is replaced atomically on every change.
package file
