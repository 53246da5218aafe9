package service

import (
	"context"
	"strings"

	"github.com/gamevault/gamevault/internal/model"
	"github.com/gamevault/gamevault/internal/repo"
)

// SearchService fronts the full-text index. An empty query degrades to a
// filtered listing with the same filter semantics, so the search endpoint
// doubles as the browse endpoint.
type SearchService struct {
	fts *repo.FTSRepo
}

func NewSearchService(fts *repo.FTSRepo) *SearchService {
	return &SearchService{fts: fts}
}

type SearchResult struct {
	Screenshots []*model.Screenshot `json:"screenshots"`
	Total       int                 `json:"total"`
}

func (s *SearchService) Search(ctx context.Context, query string, filter repo.SearchFilter) (*SearchResult, error) {
	var (
		shots []*model.Screenshot
		total int
		err   error
	)
	if strings.TrimSpace(query) == "" {
		shots, total, err = s.fts.ListFiltered(ctx, filter)
	} else {
		shots, total, err = s.fts.Search(ctx, query, filter)
	}
	if err != nil {
		return nil, err
	}
	return &SearchResult{Screenshots: shots, Total: total}, nil
}
