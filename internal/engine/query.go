package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vkozyrev/ragdex/internal/embeddings"
	"github.com/vkozyrev/ragdex/internal/fusion"
	"github.com/vkozyrev/ragdex/internal/strategy"
	"github.com/vkozyrev/ragdex/internal/vectorstore"
)

// DefaultTopK is used when a query does not request a result count.
const DefaultTopK = 10

// QueryRequest is one search against a project.
type QueryRequest struct {
	Query        string  `json:"query"`
	TopK         int     `json:"top_k,omitempty"`
	MinScore     float32 `json:"min_score,omitempty"`
	ContentType  string  `json:"content_type,omitempty"`
	FusionMethod string  `json:"fusion_method,omitempty"` // overrides the project setting
	// Reranker is accepted for request-shape compatibility but ignored; no
	// reranking stage exists.
	Reranker string `json:"reranker,omitempty"`
}

// QueryResult is one fused (or, for single-table projects, raw) hit.
type QueryResult struct {
	ID             string             `json:"id"`
	DocumentPath   string             `json:"document_path"`
	Text           string             `json:"text"`
	ChunkIndex     int                `json:"chunk_index"`
	ContentType    string             `json:"content_type,omitempty"`
	Metadata       map[string]string  `json:"metadata,omitempty"`
	Score          float32            `json:"score"`
	StrategyScores map[string]float32 `json:"strategy_scores,omitempty"`
}

// QueryResponse carries the fused hits plus how they were produced.
type QueryResponse struct {
	Results        []QueryResult `json:"results"`
	QueryTimeMs    int64         `json:"query_time_ms"`
	StrategiesUsed []string      `json:"strategies_used,omitempty"`
	FusionMethod   string        `json:"fusion_method,omitempty"`
}

// Query searches a project. With strategies enabled it embeds the query once
// per strategy, searches every strategy table in parallel, and fuses the
// ranked lists; without strategies it searches the project's single table
// directly. Any strategy failing fails the whole query.
func (e *Engine) Query(ctx context.Context, projectID string, req QueryRequest) (*QueryResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if !e.layout.Exists(projectID) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}

	m, err := e.manifests.Load(projectID)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	active, err := strategy.Build(m.Settings.EnabledStrategies())
	if err != nil {
		return nil, fmt.Errorf("resolve strategies: %w", err)
	}

	start := time.Now()
	var resp *QueryResponse
	if len(active) == 0 {
		resp, err = e.queryLegacy(ctx, projectID, req, topK)
	} else {
		resp, err = e.queryMulti(ctx, projectID, req, topK, m.Settings.FusionMethod, active)
	}
	if err != nil {
		return nil, err
	}
	resp.QueryTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}

func (e *Engine) queryLegacy(ctx context.Context, projectID string, req QueryRequest, topK int) (*QueryResponse, error) {
	vec, err := embeddings.EmbedOne(ctx, e.embedder, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := e.store.SearchByVector(ctx, legacyTable(projectID), vec, vectorstore.SearchOptions{
		TopK:        topK,
		MinScore:    req.MinScore,
		ContentType: req.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]QueryResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, QueryResult{
			ID:           h.ID,
			DocumentPath: h.DocumentPath,
			Text:         h.Text,
			ChunkIndex:   h.ChunkIndex,
			ContentType:  h.ContentType,
			Metadata:     h.Metadata,
			Score:        h.Score,
		})
	}
	return &QueryResponse{Results: results}, nil
}

func (e *Engine) queryMulti(
	ctx context.Context,
	projectID string,
	req QueryRequest,
	topK int,
	projectFusion string,
	active []strategy.Active,
) (*QueryResponse, error) {
	methodName := req.FusionMethod
	if methodName == "" {
		methodName = projectFusion
	}
	method, err := fusion.ParseMethod(methodName)
	if err != nil {
		return nil, err
	}

	// Each strategy retrieves with headroom so fusion has enough candidate
	// overlap to re-rank from.
	perStrategyK := topK * 2

	lists := make([]fusion.StrategyResults, len(active))
	errs := make([]error, len(active))
	var wg sync.WaitGroup
	for i, a := range active {
		wg.Add(1)
		go func(i int, a strategy.Active) {
			defer wg.Done()
			lists[i], errs[i] = e.queryStrategy(ctx, projectID, req, perStrategyK, a)
		}(i, a)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", active[i].Strategy.ID(), err)
		}
	}

	fused := fusion.Fuse(method, lists, topK)

	results := make([]QueryResult, 0, len(fused))
	for _, f := range fused {
		results = append(results, QueryResult{
			ID:             f.ID,
			DocumentPath:   f.DocumentPath,
			Text:           f.Text,
			ChunkIndex:     f.ChunkIndex,
			ContentType:    f.ContentType,
			Metadata:       f.Metadata,
			Score:          float32(f.FusedScore),
			StrategyScores: f.StrategyScores,
		})
	}

	used := make([]string, len(active))
	for i, a := range active {
		used[i] = a.Strategy.ID()
	}
	return &QueryResponse{
		Results:        results,
		StrategiesUsed: used,
		FusionMethod:   string(method),
	}, nil
}

func (e *Engine) queryStrategy(
	ctx context.Context,
	projectID string,
	req QueryRequest,
	k int,
	a strategy.Active,
) (fusion.StrategyResults, error) {
	text := a.Strategy.PrepareQueryText(req.Query)
	vec, err := embeddings.EmbedOne(ctx, e.embedder, text)
	if err != nil {
		return fusion.StrategyResults{}, fmt.Errorf("embed query: %w", err)
	}

	hits, err := e.store.SearchByVector(ctx, strategyTable(projectID, a.Strategy.ID()), vec, vectorstore.SearchOptions{
		TopK:        k,
		MinScore:    req.MinScore,
		ContentType: req.ContentType,
	})
	if err != nil {
		return fusion.StrategyResults{}, fmt.Errorf("search: %w", err)
	}

	return fusion.StrategyResults{
		StrategyID: a.Strategy.ID(),
		Weight:     a.Weight,
		Results:    hits,
	}, nil
}
