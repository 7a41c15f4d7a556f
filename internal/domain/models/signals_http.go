package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type SignalsRequest struct {
	Symbols string `query:"symbols" json:"symbols"`
	Refresh bool   `query:"refresh" json:"refresh"`
}

type BacktestRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required,ticker"`
	Profile string `query:"profile" json:"profile" default:"Moderado"`
	Curve   bool   `query:"curve" json:"curve"`
}
