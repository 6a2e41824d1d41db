package relay

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/nandanihada/Survey-AI-sub001/internal/models"
	"github.com/nandanihada/Survey-AI-sub001/internal/template"
)

// Dispatch sends one rendered postback to one partner and records the
// outcome. Exactly one PostbackAttempt is written per call, whatever
// happens on the wire:
//
//   - transport failure (timeout, DNS, refused) → success=false, nil code
//   - HTTP response received → success = 2xx, code = actual status
//
// There is no automatic retry; a failed attempt is replayed, if at all, by
// an operator from the logged row.
func (r *Relay) Dispatch(ctx context.Context, partner models.Partner, event models.ConversionEvent) models.PostbackAttempt {
	attempt := models.PostbackAttempt{
		EventID:     event.EventID,
		PartnerName: partner.Name,
		URL:         template.Render(partner.URL, event),
		Timestamp:   time.Now().UTC(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attempt.URL, nil)
	if err != nil {
		r.logger.Warn("postback URL unusable", "partner_name", partner.Name, "url", attempt.URL, "error", err)
	} else {
		resp, err := r.client.Do(req)
		if err != nil {
			r.logger.Warn("postback dispatch failed", "partner_name", partner.Name, "event_id", event.EventID, "error", err)
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			code := resp.StatusCode
			attempt.ResponseCode = &code
			attempt.Success = code >= 200 && code < 300
		}
	}

	// The attempt row is the audit trail; a write failure here is the one
	// gap the contract cannot close, so it is at least logged loudly.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.logs.AppendOutbound(logCtx, attempt); err != nil {
		r.logger.Error("failed to record postback attempt", "partner_name", partner.Name, "event_id", event.EventID, "error", err)
	}

	code := 0
	if attempt.ResponseCode != nil {
		code = *attempt.ResponseCode
	}
	r.logger.Info("postback dispatched",
		"partner_name", partner.Name,
		"event_id", event.EventID,
		"success", attempt.Success,
		"response_code", code,
	)
	return attempt
}
