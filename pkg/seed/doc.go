// Package seed fills a medication store with records.
//
// Records come from two places: a Generator that draws synthetic people,
// conditions and medicines from fixed pools, and YAML files read by
// LoadFile. Both feed an Importer, which inserts records one at a time and
// skips ids that are already stored, so seeding or importing the same data
// twice leaves the store unchanged.
//
// Watcher re-imports a file each time it changes.
package seed
