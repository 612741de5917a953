package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/probe-report/internal/results"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/google/uuid"
)

const defaultListSize = 1000

type Reader struct {
	client    *elasticsearch.TypedClient
	indexName string
}

func NewReader(config ClientConfig) (*Reader, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	indexName := config.IndexName
	if indexName == "" {
		indexName = DefaultIndexName
	}
	return &Reader{client: client, indexName: indexName}, nil
}

func (r *Reader) List(ctx context.Context, filter results.Filter) ([]results.Record, error) {
	size := filter.Limit
	if size <= 0 {
		size = defaultListSize
	}

	asc := sortorder.Asc
	res, err := r.client.Search().
		Index(r.indexName).
		Query(filterQuery(filter)).
		From(filter.Offset).
		Size(size).
		Sort(&types.SortOptions{
			SortOptions: map[string]types.FieldSort{
				"created_at": {Order: &asc},
			},
		}).
		Do(ctx)
	if err != nil {
		slog.Error("Elasticsearch results query failed", "error", err)
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	out := make([]results.Record, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc Document
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		rec, err := doc.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func filterQuery(filter results.Filter) *types.Query {
	var terms []types.Query
	term := func(field, value string) {
		terms = append(terms, types.Query{
			Term: map[string]types.TermQuery{field: {Value: value}},
		})
	}
	if filter.RunID != uuid.Nil {
		term("run_id", filter.RunID.String())
	}
	if filter.Language != "" {
		term("language", filter.Language)
	}
	if filter.Task != "" {
		term("task", filter.Task)
	}
	if filter.Metric != "" {
		term("metric", filter.Metric)
	}

	if len(terms) == 0 {
		return &types.Query{MatchAll: types.NewMatchAllQuery()}
	}
	return &types.Query{Bool: &types.BoolQuery{Filter: terms}}
}
