// Package extract runs entity and relation extraction over document chunks
// with a bounded worker pool.
//
// A Pool fans chunks out to NumWorkers goroutines while a weighted semaphore
// caps in-flight extractor calls at MaxConcurrentLLMCalls, independently of
// the worker count. Each chunk gets up to MaxRetries+1 attempts under a
// per-attempt timeout, with exponential backoff between attempts. Failures
// never abort a batch: every chunk yields exactly one Result, failed results
// carry the error message as data, and ProcessChunks reports aggregate
// progress as chunks complete.
package extract
