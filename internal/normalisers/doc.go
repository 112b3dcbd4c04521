// Package normalisers provides TextExtractor implementations for the file
// formats accepted by ingestion, and a Registry that selects one by file
// extension.
//
// Extractors are registered with the Registry at startup via RegisterDefaults.
package normalisers
