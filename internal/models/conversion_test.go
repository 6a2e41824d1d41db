package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseConversionEventCanonical(t *testing.T) {
	event, err := ParseConversionEvent(map[string]string{
		"click_id":          "abc123",
		"payout":            "5.50",
		"currency":          "usd",
		"conversion_status": "confirmed",
		"transaction_id":    "tx-1",
		"sub1":              "s1",
		"sub2":              "s2",
		"event_name":        "purchase",
		"offer_id":          "off-9",
		"timestamp":         "1700000000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.ClickID != "abc123" {
		t.Errorf("click_id = %q", event.ClickID)
	}
	if event.Payout != "5.50" {
		t.Errorf("payout = %q", event.Payout)
	}
	if event.Currency != "USD" {
		t.Errorf("currency = %q, want uppercased USD", event.Currency)
	}
	if event.ConversionStatus != StatusConfirmed {
		t.Errorf("status = %q", event.ConversionStatus)
	}
	if want := time.Unix(1700000000, 0).UTC(); !event.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", event.Timestamp, want)
	}
}

func TestParseConversionEventLegacySid1(t *testing.T) {
	event, err := ParseConversionEvent(map[string]string{"sid1": "legacy-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ClickID != "legacy-1" {
		t.Errorf("click_id = %q, want sid1 alias", event.ClickID)
	}
}

func TestParseConversionEventCanonicalWinsOverSid1(t *testing.T) {
	event, err := ParseConversionEvent(map[string]string{
		"click_id": "canonical",
		"sid1":     "legacy",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ClickID != "canonical" {
		t.Errorf("click_id = %q, canonical must win", event.ClickID)
	}
}

func TestParseConversionEventMissingClickID(t *testing.T) {
	_, err := ParseConversionEvent(map[string]string{"payout": "1.00"})
	if !errors.Is(err, ErrNoClickID) {
		t.Fatalf("err = %v, want ErrNoClickID", err)
	}
}

func TestParseConversionEventDefaults(t *testing.T) {
	before := time.Now().UTC()
	event, err := ParseConversionEvent(map[string]string{"click_id": "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.Currency != "USD" {
		t.Errorf("currency = %q, want default USD", event.Currency)
	}
	if event.ConversionStatus != StatusPending {
		t.Errorf("status = %q, want default pending", event.ConversionStatus)
	}
	if event.Timestamp.Before(before.Add(-time.Second)) {
		t.Errorf("timestamp = %v, want receipt-time fallback", event.Timestamp)
	}
}

func TestParseConversionEventBadValues(t *testing.T) {
	// Unknown status and garbage timestamp normalize instead of failing;
	// only a missing click id is structural.
	event, err := ParseConversionEvent(map[string]string{
		"click_id":          "abc",
		"conversion_status": "weird",
		"timestamp":         "not-a-number",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ConversionStatus != StatusPending {
		t.Errorf("status = %q, want normalized pending", event.ConversionStatus)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should fall back to receipt time")
	}
}
