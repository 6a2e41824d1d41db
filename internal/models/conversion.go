package models

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrNoClickID is returned when an inbound call carries neither click_id nor
// the legacy sid1 parameter. It is the only structural rejection on the
// inbound path.
var ErrNoClickID = errors.New("click_id (or sid1) required")

// Conversion status values accepted from partners.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

// ConversionEvent is one inbound conversion notification, normalized from
// loosely-typed query/form parameters by ParseConversionEvent. Immutable
// once logged.
type ConversionEvent struct {
	EventID          string    `json:"event_id"`
	ClickID          string    `json:"click_id"`
	Payout           string    `json:"payout,omitempty"`
	Currency         string    `json:"currency"`
	OfferID          string    `json:"offer_id,omitempty"`
	ConversionStatus string    `json:"conversion_status"`
	TransactionID    string    `json:"transaction_id,omitempty"`
	Sub1             string    `json:"sub1,omitempty"`
	Sub2             string    `json:"sub2,omitempty"`
	EventName        string    `json:"event_name,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	SourceIP         string    `json:"source_ip,omitempty"`
}

// ParseConversionEvent normalizes raw inbound parameters into a typed event.
// The canonical click_id key wins over the legacy sid1 alias when both are
// present. Currency defaults to USD and conversion_status to pending. A
// missing or unparseable timestamp falls back to the receipt time.
//
// This is the single validating parse step for the inbound surface; callers
// never re-check individual parameters.
func ParseConversionEvent(params map[string]string) (ConversionEvent, error) {
	get := func(key string) string {
		return strings.TrimSpace(params[key])
	}

	clickID := get("click_id")
	if clickID == "" {
		clickID = get("sid1")
	}
	if clickID == "" {
		return ConversionEvent{}, ErrNoClickID
	}

	currency := strings.ToUpper(get("currency"))
	if currency == "" {
		currency = "USD"
	}

	status := strings.ToLower(get("conversion_status"))
	switch status {
	case StatusPending, StatusConfirmed, StatusRejected:
	default:
		status = StatusPending
	}

	ts := time.Now().UTC()
	if raw := get("timestamp"); raw != "" {
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs > 0 {
			ts = time.Unix(secs, 0).UTC()
		}
	}

	return ConversionEvent{
		ClickID:          clickID,
		Payout:           get("payout"),
		Currency:         currency,
		OfferID:          get("offer_id"),
		ConversionStatus: status,
		TransactionID:    get("transaction_id"),
		Sub1:             get("sub1"),
		Sub2:             get("sub2"),
		EventName:        get("event_name"),
		Timestamp:        ts,
	}, nil
}
