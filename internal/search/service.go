// Package search fans a query out to every source configured for a domain
// and merges the answers into one deduplicated, library-annotated list.
package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/medialibre/mediatheque/internal/classify"
	"github.com/medialibre/mediatheque/internal/config"
	"github.com/medialibre/mediatheque/internal/sources"
	"github.com/medialibre/mediatheque/internal/store"
)

// Lookup answers "is this already in the library". *store.MediaRepo
// satisfies it.
type Lookup interface {
	FindBySource(ctx context.Context, sourceID, sourceName string) (*store.Media, error)
	FindByISBN(ctx context.Context, isbn10, isbn13 string) (*store.Media, error)
}

// Result is one merged search answer.
type Result struct {
	Results      []canonical.Record
	TotalResults int
	TotalPages   int
}

// Service runs multi-source searches.
type Service struct {
	clients map[canonical.Source]sources.Client
	lookup  Lookup
}

// NewService builds a service over the given source clients. lookup may be
// nil, in which case no InLibrary annotation happens.
func NewService(clients []sources.Client, lookup Lookup) *Service {
	byName := make(map[canonical.Source]sources.Client, len(clients))
	for _, c := range clients {
		byName[c.Name()] = c
	}
	return &Service{clients: byName, lookup: lookup}
}

// Search queries every source configured for the domain concurrently and
// merges the results in priority order. A failing source logs a warning and
// contributes nothing; only a fully empty board with no survivors is still
// a success with zero results.
func (s *Service) Search(ctx context.Context, query string, domain canonical.Domain, opts sources.Options) (*Result, error) {
	priority := config.SourcePriority(string(domain))

	type slot struct {
		records []canonical.Record
	}
	slots := make([]slot, len(priority))

	var wg sync.WaitGroup
	for i, name := range priority {
		client, ok := s.clients[canonical.Source(name)]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, client sources.Client) {
			defer wg.Done()
			records, err := client.Search(ctx, query, opts)
			if err != nil {
				slog.Warn("source search failed", "source", client.Name(), "error", err)
				return
			}
			slots[i].records = records
		}(i, client)
	}
	wg.Wait()

	var all []canonical.Record
	for _, sl := range slots {
		all = append(all, sl.records...)
	}

	merged := Merge(all, func(rec canonical.Record) bool {
		return classify.Matches(domain, rec)
	})

	if s.lookup != nil {
		for i := range merged {
			inLib, err := s.inLibrary(ctx, &merged[i])
			if err != nil {
				slog.Warn("library lookup failed", "title", merged[i].Title, "error", err)
				continue
			}
			merged[i].InLibrary = inLib
		}
	}

	limit := opts.Cap()
	total := len(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	pages := (total + limit - 1) / limit
	if pages == 0 {
		pages = 1
	}
	return &Result{Results: merged, TotalResults: total, TotalPages: pages}, nil
}

// inLibrary checks the store by external identity first, then by ISBN.
func (s *Service) inLibrary(ctx context.Context, rec *canonical.Record) (bool, error) {
	row, err := s.lookup.FindBySource(ctx, rec.ExternalID, string(rec.SourceName))
	if err != nil {
		return false, err
	}
	if row != nil {
		return true, nil
	}
	if rec.ISBN10 == "" && rec.ISBN13 == "" {
		return false, nil
	}
	row, err = s.lookup.FindByISBN(ctx, rec.ISBN10, rec.ISBN13)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}
