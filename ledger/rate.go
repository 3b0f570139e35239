package ledger

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// DefaultRate is the foreign-to-local conversion rate a ledger starts with.
var DefaultRate = decimal.NewFromInt(5)

// RateListener is called after the conversion rate changed.
type RateListener func(old, new decimal.Decimal)

// Rate holds the conversion rate shared by every calculation of a ledger and
// notifies subscribers when it changes. Past rates are not kept.
type Rate struct {
	mu        sync.RWMutex
	value     decimal.Decimal
	nextID    int
	listeners map[int]RateListener
}

// NewRate creates a Rate holding value.
func NewRate(value decimal.Decimal) *Rate {
	return &Rate{
		value:     value,
		listeners: make(map[int]RateListener),
	}
}

// Value returns the current rate.
func (r *Rate) Value() decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set replaces the rate and notifies listeners synchronously. Non-positive
// values are rejected with ErrNonPositiveRate.
func (r *Rate) Set(value decimal.Decimal) error {
	if !value.IsPositive() {
		return ErrNonPositiveRate
	}

	r.mu.Lock()
	old := r.value
	r.value = value
	listeners := make([]RateListener, 0, len(r.listeners))
	for id := 0; id < r.nextID; id++ {
		if fn, ok := r.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(old, value)
	}
	return nil
}

// Subscribe registers fn for rate changes. The returned function removes it.
func (r *Rate) Subscribe(fn RateListener) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// ParseRate parses text as a positive decimal rate.
func ParseRate(text string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(text)
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, &InvalidRateError{Input: text, Err: err}
	}
	if !value.IsPositive() {
		return decimal.Zero, &InvalidRateError{Input: text, Err: ErrNonPositiveRate}
	}
	return value, nil
}
