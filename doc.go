// GraphEx - Concurrent Knowledge Graph Extraction for Go
//
// GraphEx turns document chunks into a knowledge graph. A bounded worker
// pool runs LLM entity and relationship extraction with retries, timeouts,
// and live progress reporting; collaborator packages persist the results,
// index chunk embeddings, journal every outcome for audit and replay, and
// answer queries over the combined graph and vector signal.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/graphexio/graphex
//
// Run extraction over a chunk batch:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/graphexio/graphex/extract"
//		"github.com/graphexio/graphex/extract/llm"
//		"github.com/graphexio/graphex/kg"
//		"github.com/tmc/langchaingo/llms/ollama"
//	)
//
//	func main() {
//		model, _ := ollama.New(ollama.WithModel("llama3.1"))
//		extractor, _ := llm.NewLangChainExtractor(model)
//
//		pool, _ := extract.New(extract.DefaultConfig(), extractor)
//
//		chunks := []kg.Chunk{
//			{ID: "c1", Text: "Ada Lovelace wrote the first program."},
//			{ID: "c2", Text: "Grace Hopper created the first compiler."},
//		}
//
//		results := pool.ProcessChunks(context.Background(), chunks, func(p extract.Progress) {
//			fmt.Printf("%.0f%%\n", p.Percent)
//		})
//		for res := range results {
//			fmt.Printf("%s: %d entities, %d relations\n",
//				res.ChunkID, len(res.Entities), len(res.Relations))
//		}
//	}
//
// Every submitted chunk yields exactly one result, failed chunks included,
// so downstream accounting never loses work.
//
// # Key Features
//
//   - Bounded concurrency: a fixed worker count plus an admission
//     semaphore capping in-flight model calls
//   - Retries with exponential backoff and per-attempt timeouts
//   - Deterministic accounting: one result per chunk, success or failure
//   - Live telemetry: serialized progress callbacks and a worker status board
//   - Pluggable persistence: graph stores, vector stores, run journals
//   - Hybrid retrieval: vector similarity merged with graph neighborhoods
//
// # Package Structure
//
// extract/
// The worker pool. Configure workers, timeouts, retries, and the
// concurrent-call cap; feed chunks; drain results.
//
//	cfg := extract.DefaultConfig()
//	cfg.NumWorkers = 8
//	cfg.MaxConcurrentLLMCalls = 4
//	pool, err := extract.New(cfg, extractor)
//
// extract/llm/
// Extractor implementations: LangChainExtractor over any langchaingo
// llms.Model, OpenAIExtractor for OpenAI-compatible endpoints such as
// Ollama or vLLM, and the prompt/parse plumbing they share.
//
//	extractor, _ := llm.NewOpenAICompatibleExtractor(
//		"http://localhost:11434/v1", "", "llama3.1")
//
// kg/
// The domain model (Entity, Relation, Chunk, Document) and the Store,
// VectorStore, and Embedder contracts everything else plugs into.
//
// kg/store/
// Graph and vector store implementations: an in-memory graph for tests
// and small corpora, and a FalkorDB-backed graph speaking Cypher over
// the Redis protocol.
//
//	graph, _ := store.New("falkordb://localhost:6379/graphex")
//
// ingest/
// The Builder wires a pool to stores and a journal and runs whole
// ingestions: extract, upsert entities and relations, embed and index
// chunks, journal each outcome, report totals.
//
//	builder, _ := ingest.NewBuilder(extractor,
//		ingest.WithGraphStore(graph),
//		ingest.WithVectorStore(vectors),
//		ingest.WithEmbedder(embedder),
//		ingest.WithJournal(journal),
//	)
//	report, err := builder.Build(ctx, chunks)
//
// runlog/
// Per-chunk run journal for auditing and replaying extraction runs, with
// memory, Redis, PostgreSQL, and SQLite backends.
//
//	journal, _ := postgres.NewPostgresJournal(ctx, postgres.PostgresOptions{
//		ConnString: "postgres://localhost/graphex",
//	})
//	records, _ := journal.Run(ctx, report.RunID)
//
// retrieve/
// Query-time retrievers: vector similarity, graph neighborhood
// expansion, and the hybrid merger weighting both.
//
//	hybrid, _ := retrieve.NewHybridRetriever(vectorRetriever, graphRetriever)
//	results, _ := hybrid.Retrieve(ctx, "who designed the analytical engine")
//
// loader/
// Text, HTML, and Markdown loaders producing documents, plus the Chunks
// passthrough for corpora that are already chunk-sized.
//
// log/
// The logging seam used across the module, with a stdlib default and a
// kataras/golog adapter.
//
// # Configuration
//
// The library reads no environment variables itself; construction is
// explicit. The examples use:
//
//   - OLLAMA_HOST: Ollama server for local models
//   - GRAPHEX_MODEL: model name for the ingest example
//   - OPENAI_API_KEY: when running against OpenAI
//
// # Examples
//
// See the examples directory: extraction_pool (pool mechanics and worker
// telemetry), graph_ingest (full ingestion with a local model), and
// hybrid_search (retrieval over a seeded graph).
package graphex // import "github.com/graphexio/graphex"
