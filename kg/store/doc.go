// Package store provides kg.Store and kg.VectorStore implementations.
//
// Graph stores are constructed through New with a URL:
//
//	memory://                          in-process, for tests and small graphs
//	falkordb://localhost:6379/kg       FalkorDB (Cypher over the Redis protocol)
//
// The vector side ships with MemoryVectorStore, a cosine-similarity store
// for corpora that fit in memory.
package store
