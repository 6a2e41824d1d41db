package models

// PostbackAck is returned by GET/POST /postback. Matched is false for
// unmatched click ids; the call still succeeds so partners do not retry.
type PostbackAck struct {
	Status  string `json:"status"`
	Matched bool   `json:"matched"`
	EventID string `json:"event_id"`
}

// PartnerCreateRequest is the POST /partners payload.
// Status is optional and defaults to active.
type PartnerCreateRequest struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Status string `json:"status,omitempty"`
}

// PartnerStatusRequest is the PATCH /partners/:name/status payload.
type PartnerStatusRequest struct {
	Status string `json:"status"`
}

// ShareCreateRequest is the POST /shares payload.
type ShareCreateRequest struct {
	AccountID   string `json:"account_id"`
	PartnerName string `json:"partner_name"`
}
