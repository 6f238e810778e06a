// Package testutil provides common utility functions for testing.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/iwvelando/rental-quote/internal/tariff"
)

// SampleTable returns the three-band, two-threshold table used across tests:
// 2 guests $10.000, 4 guests $15.000, 6 guests $20.000; 10% from 3 nights and
// 20% from 7 nights.
func SampleTable() tariff.Table {
	return tariff.Table{
		PeopleBands: []tariff.Band{
			{People: 2, PricePerNight: 10000},
			{People: 4, PricePerNight: 15000},
			{People: 6, PricePerNight: 20000},
		},
		LongStayDiscounts: []tariff.LongStayDiscount{
			{MinNights: 3, DiscountPercent: 10},
			{MinNights: 7, DiscountPercent: 20},
		},
	}
}

// SampleCatalog uses SampleTable for autumn and the same bands without any
// long-stay threshold for summer.
func SampleCatalog() tariff.Catalog {
	summer := SampleTable()
	summer.LongStayDiscounts = []tariff.LongStayDiscount{}
	return tariff.NewCatalog(summer, SampleTable())
}

// Notifications records transient feedback messages.
type Notifications struct {
	mu       sync.Mutex
	messages []string
}

// Notify records msg.
func (n *Notifications) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

// Messages returns the recorded messages in order.
func (n *Notifications) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// Last returns the most recent message, or "" when none was recorded.
func (n *Notifications) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

// ErrUnavailable is returned by failing fakes.
var ErrUnavailable = errors.New("unavailable")

// Clipboard is an in-memory clipboard. When Fail is set every write fails.
type Clipboard struct {
	Fail bool

	mu   sync.Mutex
	text string
}

// WriteText stores text unless the clipboard is set to fail.
func (c *Clipboard) WriteText(_ context.Context, text string) error {
	if c.Fail {
		return ErrUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}

// Text returns the last written text.
func (c *Clipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}
