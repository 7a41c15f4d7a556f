package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"TazeAI/internal/domain/models"
)

type memStore struct {
	mu       sync.Mutex
	raw      map[string]*models.ProviderBundle
	ds       models.FeatureDataset
	saveErr  error
	loadErr  error
	rawSaves int
}

func newMemStore() *memStore {
	return &memStore{raw: map[string]*models.ProviderBundle{}, ds: models.FeatureDataset{}}
}

func (s *memStore) SaveRawSnapshot(_ context.Context, symbol string, b *models.ProviderBundle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.raw[symbol] = b
	s.rawSaves++
	return "mem/" + symbol, nil
}

func (s *memStore) LatestRawSnapshot(_ context.Context, symbol string) (*models.ProviderBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.raw[symbol]
	if !ok {
		return nil, models.ErrDataUnavailable
	}
	return b, nil
}

func (s *memStore) SaveFeatureTable(_ context.Context, rows []models.FeatureRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(rows) == 0 {
		return "", models.ErrEmptyDataset
	}
	s.ds[rows[0].Symbol] = rows
	return "mem/" + rows[0].Symbol, nil
}

func (s *memStore) LoadConsolidatedDataset(context.Context) (models.FeatureDataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if len(s.ds) == 0 {
		return nil, models.ErrNoDataset
	}
	return s.ds, nil
}

type fakeProvider struct {
	mu      sync.Mutex
	bundles map[string]*models.ProviderBundle
	errs    map[string]error
	calls   []string
}

func (p *fakeProvider) FetchBundle(_ context.Context, symbol string, _ int) (*models.ProviderBundle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, symbol)
	if err := p.errs[symbol]; err != nil {
		return nil, err
	}
	if b, ok := p.bundles[symbol]; ok {
		return b, nil
	}
	return &models.ProviderBundle{Symbol: symbol}, nil
}

// historyBundle builds a bundle with n daily closes starting at 10.
func historyBundle(symbol string, n int) *models.ProviderBundle {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{
			"date":   time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02"),
			"close":  10 + float64(i),
			"volume": 1000,
		}
	}
	b, _ := json.Marshal(items)
	return &models.ProviderBundle{
		Symbol:       symbol,
		Info:         &models.Envelope{Data: json.RawMessage(`{"name":"` + symbol + ` SA","sector":"Financeiro"}`)},
		Intraday:     &models.Envelope{Data: json.RawMessage(`[{"price":"42,50"}]`)},
		Histories:    &models.Envelope{Data: b},
		Fundamentals: &models.Envelope{Data: json.RawMessage(`{"p_l":"8,5"}`)},
	}
}

type constPredictor struct {
	names []string
	raw   float64
	err   error
	calls int
	mu    sync.Mutex
}

func (p *constPredictor) FeatureNames() []string { return p.names }

func (p *constPredictor) HorizonDays() int { return 90 }
func (p *constPredictor) Predict(_ context.Context, vec []float64) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(vec) != len(p.names) {
		return 0, fmt.Errorf("vector has %d values, want %d", len(vec), len(p.names))
	}
	return p.raw, p.err
}

type recMetrics struct {
	mu         sync.Mutex
	saved      []string
	skipped    map[string]int
	zeroFilled int
	scores     map[string]float64
	errs       map[string]int
}

func newRecMetrics() *recMetrics {
	return &recMetrics{skipped: map[string]int{}, scores: map[string]float64{}, errs: map[string]int{}}
}

func (m *recMetrics) RecordSnapshotSaved(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s)
}

func (m *recMetrics) RecordSymbolSkipped(r string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[r]++
}

func (m *recMetrics) RecordProviderError(string) {}

func (m *recMetrics) RecordZeroFilled(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zeroFilled += n
}

func (m *recMetrics) RecordScore(s string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[s] = v
}

func (m *recMetrics) RecordLatency(string, float64) {}

func (m *recMetrics) RecordError(k string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[k]++
}

type recPublisher struct {
	batches [][]models.SignalRecord
	err     error
}

func (p *recPublisher) PublishSignals(_ context.Context, recs []models.SignalRecord) error {
	p.batches = append(p.batches, recs)
	return p.err
}

func (p *recPublisher) Close() error { return nil }

type mapCache struct {
	m    map[string][]models.SignalRecord
	ttls []time.Duration
}

func (c *mapCache) Get(_ context.Context, key string) ([]models.SignalRecord, bool) {
	r, ok := c.m[key]
	return r, ok
}

func (c *mapCache) Set(_ context.Context, key string, recs []models.SignalRecord, ttl time.Duration) {
	if c.m == nil {
		c.m = map[string][]models.SignalRecord{}
	}
	c.m[key] = recs
	c.ttls = append(c.ttls, ttl)
}

var errBoom = errors.New("boom")
