package scheme

import "github.com/kailas-cloud/schemematch/internal/db"

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex defines the corpus index: tag pre-filter fields, weighted BM25 text fields
// and an HNSW cosine vector field. Hashes without an embedding are simply absent from KNN.
func buildIndex(name, prefix string, vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(name).
		Prefix(prefix).
		TagWithOpts(fieldLevel, ",", false).
		TagWithOpts(fieldState, ",", false).
		TagWithOpts(fieldCategory, ",", false).
		TextWeighted(fieldName, 3).
		TextWeighted(fieldKeywords, 2).
		Text(fieldDetails).
		Text(fieldBenefits).
		Text(fieldEligibility).
		VectorHNSW(fieldEmbedding, vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}
