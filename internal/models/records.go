package models

import "time"

// Partner status values.
const (
	PartnerActive   = "active"
	PartnerInactive = "inactive"
)

// Partner is a configured third-party destination for outbound postbacks.
// The human-readable name is the unique join key referenced by shares;
// uniqueness is enforced by the storage layer.
type Partner struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PostbackShare maps an account to a partner it forwards conversions to.
// The partner is referenced by name; a dangling reference is tolerated at
// dispatch time (skip + warn), never fatal.
type PostbackShare struct {
	AccountID   string    `json:"account_id"`
	PartnerName string    `json:"partner_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// SurveyResponse is the externally-owned record a conversion is matched
// against. The relay only reads it and writes the postback_* enrichment
// fields; everything else belongs to the survey pipeline.
type SurveyResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	SurveyID  string `json:"survey_id"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
}

// InboundLog is one append-only record per received conversion callback.
// Success reports whether a matching survey response was found.
type InboundLog struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Success   bool      `json:"success"`
	ClickID   string    `json:"click_id"`
	SourceIP  string    `json:"source_ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PostbackAttempt is one append-only record per (event, partner) dispatch.
// ResponseCode is nil when the attempt failed before an HTTP status was
// received (timeout, DNS, connection refused).
type PostbackAttempt struct {
	EventID      string    `json:"event_id"`
	PartnerName  string    `json:"partner_name"`
	URL          string    `json:"url"`
	Success      bool      `json:"success"`
	ResponseCode *int      `json:"response_code"`
	Timestamp    time.Time `json:"timestamp"`
}

// LogFilter narrows audit-log queries. Zero values mean "no filter";
// Limit is defaulted and capped by the store.
type LogFilter struct {
	ClickID     string
	EventID     string
	PartnerName string
	Limit       int
}
