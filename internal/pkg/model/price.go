package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one undecoded element of the DAM results array. Records are
// decoded one by one so a single bad entry does not spoil the batch.
type RawRecord = json.RawMessage

// PriceRecord is a single day-ahead market result.
type PriceRecord struct {
	DeliveryDay   string
	DeliveryStart time.Time // zero when the source omitted it
	DeliveryEnd   time.Time // zero when the source omitted it
	Period        int
	Price         decimal.Decimal // EUR/MWh
}

// HasInterval reports whether both ends of the delivery interval are known.
func (r PriceRecord) HasInterval() bool {
	return !r.DeliveryStart.IsZero() && !r.DeliveryEnd.IsZero()
}

// Contains reports whether t falls in [DeliveryStart, DeliveryEnd).
func (r PriceRecord) Contains(t time.Time) bool {
	if !r.HasInterval() {
		return false
	}
	return !t.Before(r.DeliveryStart) && t.Before(r.DeliveryEnd)
}

type ScheduleEntry struct {
	Period int
	Start  time.Time
	Price  decimal.Decimal
}

func (e ScheduleEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Period int         `json:"period"`
		Start  string      `json:"start"`
		Price  json.Number `json:"price"`
	}{
		Period: e.Period,
		Start:  e.Start.UTC().Format(time.RFC3339),
		Price:  json.Number(e.Price.String()),
	})
}

// Stats holds the min, max and average price of one delivery day. A field
// is invalid when no record contributed to it.
type Stats struct {
	Min decimal.NullDecimal
	Max decimal.NullDecimal
	Avg decimal.NullDecimal
}

// Snapshot is the aggregation result of one poll. It is never modified
// after it has been handed to the coordinator.
type Snapshot struct {
	CurrentPrice  decimal.NullDecimal
	CurrentPeriod *int
	NextPrice     decimal.NullDecimal
	Today         Stats
	Tomorrow      Stats
	Prices        []ScheduleEntry
	EvaluatedAt   time.Time
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	prices := s.Prices
	if prices == nil {
		prices = []ScheduleEntry{}
	}
	return json.Marshal(map[string]any{
		"current_price":  Number(s.CurrentPrice),
		"current_period": s.CurrentPeriod,
		"next_price":     Number(s.NextPrice),
		"today_min":      Number(s.Today.Min),
		"today_max":      Number(s.Today.Max),
		"today_avg":      Number(s.Today.Avg),
		"tomorrow_min":   Number(s.Tomorrow.Min),
		"tomorrow_max":   Number(s.Tomorrow.Max),
		"tomorrow_avg":   Number(s.Tomorrow.Avg),
		"prices":         prices,
		"evaluated_at":   s.EvaluatedAt.UTC().Format(time.RFC3339),
	})
}

// Number renders d as a bare JSON number, or nil when it is absent.
func Number(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return json.Number(d.Decimal.String())
}

// Status describes the outcome of the most recent poll.
type Status struct {
	LastUpdateSuccess bool      `json:"last_update_success"`
	LastUpdated       time.Time `json:"last_updated"`
	LastSuccess       time.Time `json:"last_success"`
	Error             string    `json:"error,omitempty"`
}

// Update is what gets fanned out to the publishers after every poll.
// Snapshot is the last good result and may be nil if no poll succeeded yet.
type Update struct {
	Snapshot *Snapshot
	Status   Status
}
