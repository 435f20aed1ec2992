// Package billing defines the canonical billing-item schema produced by the
// extraction pipeline and the normalizer that maps raw extractor records
// onto it.
package billing

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// ItemType classifies how a billing item is charged.
type ItemType string

const (
	// TypeMetered is usage-based pricing keyed by an event name.
	TypeMetered ItemType = "metered"
	// TypeRecurring is subscription pricing billed on an interval.
	TypeRecurring ItemType = "recurring"
	// TypeOneTime is a single-shot charge.
	TypeOneTime ItemType = "one_time"
)

// Interval is the recurrence period of a recurring item.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Metadata keys attached to every normalized item.
const (
	MetaAutoDetectedType     = "auto_detected_type"
	MetaExtractionConfidence = "extraction_confidence"
	MetaMatchedKeyword       = "matched_keyword"
)

// Item is one normalized product/price candidate. Items are built through
// the typed constructors below so that Interval is present exactly when the
// type is recurring and EventName exactly when it is metered.
type Item struct {
	ID           string         `json:"id"`
	Product      string         `json:"product"`
	Price        float64        `json:"price"`
	UnitAmount   int64          `json:"unit_amount"`
	Currency     string         `json:"currency"`
	Type         ItemType       `json:"type"`
	Interval     Interval       `json:"interval,omitempty"`
	EventName    string         `json:"event_name,omitempty"`
	Description  string         `json:"description,omitempty"`
	Source       string         `json:"source,omitempty"`
	LineNumber   int            `json:"line_number,omitempty"`
	OriginalLine string         `json:"original_line,omitempty"`
	Metadata     map[string]any `json:"metadata"`
}

// NewMeteredItem builds a usage-based item. The event name is derived from
// the product name unless an explicit one is given.
func NewMeteredItem(id, product string, price Money) Item {
	it := newItem(id, product, price, TypeMetered)
	it.EventName = EventName(product)
	return it
}

// NewRecurringItem builds a subscription item with the given interval.
func NewRecurringItem(id, product string, price Money, interval Interval) Item {
	it := newItem(id, product, price, TypeRecurring)
	if interval == "" {
		interval = IntervalMonth
	}
	it.Interval = interval
	return it
}

// NewOneTimeItem builds a single-charge item.
func NewOneTimeItem(id, product string, price Money) Item {
	return newItem(id, product, price, TypeOneTime)
}

func newItem(id, product string, price Money, typ ItemType) Item {
	return Item{
		ID:         id,
		Product:    product,
		Price:      price.Major(),
		UnitAmount: price.MinorUnits(),
		Currency:   price.Currency(),
		Type:       typ,
		Metadata:   map[string]any{MetaAutoDetectedType: string(typ)},
	}
}

// EventName derives a metered event identifier from a product name, e.g.
// "API Requests" -> "api_requests".
func EventName(product string) string {
	s := slug.Make(product)
	s = strings.ReplaceAll(s, "-", "_")
	if s == "" {
		s = "usage"
	}
	return s
}

// Validate checks the canonical invariants: non-negative price, recomputed
// minor units, lower-case three-letter currency, and type-conditional field
// presence.
func (it Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("item has no id")
	}
	if it.Product == "" {
		return fmt.Errorf("item %s has no product name", it.ID)
	}
	if it.Price < 0 {
		return fmt.Errorf("item %s has negative price %v", it.ID, it.Price)
	}
	if want := minorUnits(it.Price); it.UnitAmount != want {
		return fmt.Errorf("item %s unit_amount %d does not match price %v (want %d)",
			it.ID, it.UnitAmount, it.Price, want)
	}
	if len(it.Currency) != 3 || it.Currency != strings.ToLower(it.Currency) {
		return fmt.Errorf("item %s has invalid currency %q", it.ID, it.Currency)
	}
	switch it.Type {
	case TypeMetered:
		if it.EventName == "" {
			return fmt.Errorf("metered item %s has no event_name", it.ID)
		}
		if it.Interval != "" {
			return fmt.Errorf("metered item %s must not carry an interval", it.ID)
		}
	case TypeRecurring:
		if it.Interval == "" {
			return fmt.Errorf("recurring item %s has no interval", it.ID)
		}
		if it.EventName != "" {
			return fmt.Errorf("recurring item %s must not carry an event_name", it.ID)
		}
		switch it.Interval {
		case IntervalDay, IntervalWeek, IntervalMonth, IntervalYear:
		default:
			return fmt.Errorf("recurring item %s has invalid interval %q", it.ID, it.Interval)
		}
	case TypeOneTime:
		if it.Interval != "" || it.EventName != "" {
			return fmt.Errorf("one_time item %s must not carry interval or event_name", it.ID)
		}
	default:
		return fmt.Errorf("item %s has unknown type %q", it.ID, it.Type)
	}
	return nil
}
