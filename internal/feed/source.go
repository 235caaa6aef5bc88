package feed

import (
	"context"

	"github.com/couchcryptid/covid-data-etl/internal/domain"
)

// URLs holds the five feed endpoints a run reads from.
type URLs struct {
	NationalCases   string
	StateCases      string
	CountyCases     string
	NationalTesting string
	StateTesting    string
}

// Source binds a Client to a fixed set of feed URLs.
// It implements pipeline.FeedSource.
type Source struct {
	client *Client
	urls   URLs
}

// NewSource creates a Source.
func NewSource(client *Client, urls URLs) *Source {
	return &Source{client: client, urls: urls}
}

func (s *Source) NationalCases(ctx context.Context) ([]domain.CaseRecord, error) {
	return s.client.NationalCases(ctx, s.urls.NationalCases)
}

func (s *Source) StateCases(ctx context.Context) ([]domain.CaseRecord, error) {
	return s.client.StateCases(ctx, s.urls.StateCases)
}

func (s *Source) CountyCases(ctx context.Context) ([]domain.CountyRecord, error) {
	return s.client.CountyCases(ctx, s.urls.CountyCases)
}

func (s *Source) NationalTesting(ctx context.Context) ([]domain.TestingRecord, error) {
	return s.client.NationalTesting(ctx, s.urls.NationalTesting)
}

func (s *Source) StateTesting(ctx context.Context) ([]domain.TestingRecord, error) {
	return s.client.StateTesting(ctx, s.urls.StateTesting)
}
