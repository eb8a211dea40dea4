// Package kg defines the knowledge-graph domain model shared across graphex:
// entities and relations extracted from text, the chunks they were extracted
// from, and the storage interfaces (graph store, vector store, embedder) that
// backends implement.
//
// Concrete stores live in kg/store. The extraction pool in package extract
// produces Entity and Relation values; the ingest package persists them
// through the Store interface.
package kg
