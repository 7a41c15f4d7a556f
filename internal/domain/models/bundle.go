package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Envelope is the provider response shape: everything of interest sits under data.
type Envelope struct {
	Data json.RawMessage `json:"data"`
}

// HasData reports whether the envelope carries a non-null data member.
func (e *Envelope) HasData() bool {
	if e == nil {
		return false
	}
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// ProviderBundle is the raw per-symbol fetch result. A nil member means the
// corresponding request failed.
type ProviderBundle struct {
	Symbol       string    `json:"symbol"`
	FetchedAt    time.Time `json:"fetched_at,omitempty"`
	Info         *Envelope `json:"info"`
	Intraday     *Envelope `json:"intraday"`
	Histories    *Envelope `json:"histories"`
	Fundamentals *Envelope `json:"fundamentals"`
}

// StockMetadata is the descriptive part of the asset information endpoint.
type StockMetadata struct {
	Name           string `json:"name,omitempty"`
	Sector         string `json:"sector,omitempty"`
	Segment        string `json:"segment,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	Homepage       string `json:"homepage,omitempty"`
	Logo           string `json:"logo,omitempty"`
}

// IsZero reports whether no field was populated.
func (m StockMetadata) IsZero() bool { return m == StockMetadata{} }

// IntradaySnapshot is the latest intraday quote.
type IntradaySnapshot struct {
	Price   float64   `json:"price"`
	Open    float64   `json:"open,omitempty"`
	High    float64   `json:"high,omitempty"`
	Low     float64   `json:"low,omitempty"`
	Close   float64   `json:"close,omitempty"`
	Volume  float64   `json:"volume,omitempty"`
	Change  float64   `json:"change,omitempty"`
	Percent float64   `json:"percent,omitempty"`
	Time    time.Time `json:"time,omitempty"`
}
