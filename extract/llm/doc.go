// Package llm provides Extractor implementations backed by real language
// model clients: a langchaingo adapter that works with any llms.Model, and
// an OpenAI-compatible client usable against api.openai.com or self-hosted
// endpoints such as Ollama's /v1 API. Both share one JSON extraction
// contract and tolerate models that wrap their JSON in markdown fences.
package llm
