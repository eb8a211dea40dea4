package retrieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphexio/graphex/kg"
	"github.com/graphexio/graphex/kg/store"
)

func TestNewGraphRetriever(t *testing.T) {
	_, err := NewGraphRetriever(nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "graph store is required")
}

func TestGraphRetriever_Retrieve(t *testing.T) {
	graph := seededGraph(t)

	t.Run("matches multi-word entity names", func(t *testing.T) {
		r, err := NewGraphRetriever(graph)
		require.NoError(t, err)

		results, err := r.Retrieve(context.Background(), "Who was Ada Lovelace?")
		require.NoError(t, err)
		require.Len(t, results, 1)

		res := results[0]
		assert.Equal(t, "graph:Ada Lovelace", res.Chunk.ID)
		assert.Equal(t, "graph", res.Source)
		assert.InDelta(t, 0.75, res.Score, 0.001, "base score plus one relation")

		assert.Contains(t, res.Chunk.Text, "Entity: Ada Lovelace")
		assert.Contains(t, res.Chunk.Text, "Type: PERSON")
		assert.Contains(t, res.Chunk.Text, "Description: first programmer")
		assert.Contains(t, res.Chunk.Text, "Ada Lovelace -[WORKED_ON]-> Analytical Engine")
	})

	t.Run("matches single-word names case-insensitively", func(t *testing.T) {
		r, err := NewGraphRetriever(graph)
		require.NoError(t, err)

		results, err := r.Retrieve(context.Background(), "tell me about cobol")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "graph:COBOL", results[0].Chunk.ID)
	})

	t.Run("several matches sort deterministically", func(t *testing.T) {
		r, err := NewGraphRetriever(graph)
		require.NoError(t, err)

		results, err := r.Retrieve(context.Background(), "Ada Lovelace and Grace Hopper")
		require.NoError(t, err)
		require.Len(t, results, 2)
		// Equal scores fall back to chunk ID order.
		assert.Equal(t, "graph:Ada Lovelace", results[0].Chunk.ID)
		assert.Equal(t, "graph:Grace Hopper", results[1].Chunk.ID)
	})

	t.Run("k caps the result count", func(t *testing.T) {
		r, err := NewGraphRetriever(graph, WithK(1))
		require.NoError(t, err)

		results, err := r.Retrieve(context.Background(), "Ada Lovelace and Grace Hopper")
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("no entity match means no results", func(t *testing.T) {
		r, err := NewGraphRetriever(graph)
		require.NoError(t, err)

		results, err := r.Retrieve(context.Background(), "quantum chromodynamics")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty query means no results", func(t *testing.T) {
		r, err := NewGraphRetriever(graph)
		require.NoError(t, err)

		results, err := r.Retrieve(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("better connected entities score higher", func(t *testing.T) {
		busy := store.NewMemoryGraph()
		ctx := context.Background()

		require.NoError(t, busy.AddEntity(ctx, kg.Entity{ID: "Linux", Name: "Linux", Type: "TECHNOLOGY"}))
		require.NoError(t, busy.AddEntity(ctx, kg.Entity{ID: "Minix", Name: "Minix", Type: "TECHNOLOGY"}))
		for _, e := range []string{"Git", "Bash", "Docker"} {
			require.NoError(t, busy.AddEntity(ctx, kg.Entity{ID: e, Name: e, Type: "TECHNOLOGY"}))
			require.NoError(t, busy.AddRelation(ctx, kg.Relation{
				ID: e + "_RUNS_ON_Linux", Source: e, Target: "Linux", Type: "RUNS_ON",
			}))
		}
		require.NoError(t, busy.AddRelation(ctx, kg.Relation{
			ID: "Linux_INSPIRED_BY_Minix", Source: "Linux", Target: "Minix", Type: "INSPIRED_BY",
		}))

		r, err := NewGraphRetriever(busy)
		require.NoError(t, err)

		results, err := r.Retrieve(ctx, "linux or minix")
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "graph:Linux", results[0].Chunk.ID, "four relations beat one")
		assert.InDelta(t, 0.9, results[0].Score, 0.001)
		assert.Equal(t, "graph:Minix", results[1].Chunk.ID)
		assert.InDelta(t, 0.75, results[1].Score, 0.001)
	})
}

func TestQueryTerms(t *testing.T) {
	terms := queryTerms("Who was Ada Lovelace?")
	assert.Contains(t, terms, "ada")
	assert.Contains(t, terms, "lovelace")
	assert.Contains(t, terms, "ada lovelace")
	assert.NotContains(t, terms, "who", "stop word")
	assert.NotContains(t, terms, "was", "stop word")

	assert.Empty(t, queryTerms(""))
	assert.Empty(t, queryTerms("   !!!   "))

	// Punctuation splits words.
	terms = queryTerms("redis,postgres;sqlite")
	assert.Contains(t, terms, "redis")
	assert.Contains(t, terms, "postgres")
	assert.Contains(t, terms, "sqlite")
}
