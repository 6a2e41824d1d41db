// Package relay implements the postback core: matching inbound conversion
// callbacks to survey responses and fanning out rendered notifications to
// configured partners, with an append-only audit log for both directions.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nandanihada/Survey-AI-sub001/internal/models"
	"github.com/nandanihada/Survey-AI-sub001/internal/store"
)

// Storage collaborators, narrowed to what the relay actually touches so
// tests can substitute fakes. *store.PostgresStore satisfies all four.

// ResponseStore resolves and enriches externally-owned survey responses.
type ResponseStore interface {
	FindResponseByID(ctx context.Context, id string) (models.SurveyResponse, error)
	EnrichResponse(ctx context.Context, id string, event models.ConversionEvent) error
}

// PartnerStore resolves outbound destinations by their human-readable name.
type PartnerStore interface {
	FindPartnerByName(ctx context.Context, name string) (models.Partner, error)
}

// ShareStore lists the forwarding configuration for an account.
type ShareStore interface {
	ListSharesForAccount(ctx context.Context, accountID string) ([]models.PostbackShare, error)
}

// LogStore appends to the inbound/outbound audit trail.
type LogStore interface {
	AppendInbound(ctx context.Context, entry models.InboundLog) error
	AppendOutbound(ctx context.Context, attempt models.PostbackAttempt) error
}

// InboundResult is what the HTTP layer reports back to the caller. Matched
// is false for unknown click ids, which is an acknowledged state, not an
// error.
type InboundResult struct {
	Matched bool
	EventID string
}

// Relay wires the postback pipeline together. Dispatches spawned by
// HandleInbound are detached from the inbound request; Drain blocks until
// every in-flight dispatch has completed and been logged.
type Relay struct {
	responses ResponseStore
	partners  PartnerStore
	shares    ShareStore
	logs      LogStore
	client    *http.Client
	logger    *slog.Logger

	// bounds the response lookup, enrichment, receipt log, and share
	// resolution on the inbound path so a hung connection cannot pin the
	// request goroutine
	storageTimeout time.Duration

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

// New constructs a Relay. The client's Timeout bounds every outbound call;
// a nil client gets the 10s default.
func New(responses ResponseStore, partners PartnerStore, shares ShareStore, logs LogStore, client *http.Client, logger *slog.Logger) *Relay {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		responses:      responses,
		partners:       partners,
		shares:         shares,
		logs:           logs,
		client:         client,
		logger:         logger,
		storageTimeout: 5 * time.Second,
	}
}

// HandleInbound processes one conversion callback: parse, match, enrich,
// log the receipt, then trigger detached dispatch to every active partner
// share of the matched account.
//
// Errors are returned only for structurally malformed input (ErrNoClickID)
// and storage failures; an unmatched click id is a normal result so the
// HTTP layer acknowledges it with a 200 and partners do not retry-storm.
func (r *Relay) HandleInbound(ctx context.Context, params map[string]string, sourceIP string) (InboundResult, error) {
	event, err := models.ParseConversionEvent(params)
	if err != nil {
		return InboundResult{}, err
	}
	event.EventID = uuid.New().String()
	event.SourceIP = sourceIP

	// A client disconnect must not cancel matching, logging, or dispatch:
	// losing a conversion because the caller hung up is unacceptable. The
	// storage calls still get their own deadline so a hung connection
	// cannot pin this goroutine.
	detached := context.WithoutCancel(ctx)
	storeCtx, cancel := context.WithTimeout(detached, r.storageTimeout)
	defer cancel()

	resp, err := r.responses.FindResponseByID(storeCtx, event.ClickID)
	if errors.Is(err, store.ErrNotFound) {
		if err := r.logs.AppendInbound(storeCtx, inboundLog(event, false)); err != nil {
			return InboundResult{}, err
		}
		r.logger.Warn("unmatched postback", "click_id", event.ClickID, "source_ip", sourceIP)
		return InboundResult{Matched: false, EventID: event.EventID}, nil
	}
	if err != nil {
		return InboundResult{}, err
	}

	if err := r.responses.EnrichResponse(storeCtx, resp.ID, event); err != nil {
		return InboundResult{}, err
	}

	// The receipt record precedes any dispatch so an audit trail exists
	// even if the process dies mid-fan-out.
	if err := r.logs.AppendInbound(storeCtx, inboundLog(event, true)); err != nil {
		return InboundResult{}, err
	}

	r.fanOut(storeCtx, detached, resp.AccountID, event)

	return InboundResult{Matched: true, EventID: event.EventID}, nil
}

// fanOut resolves the account's shares on the bounded lookup context and
// spawns one detached dispatch per active partner on dispatchCtx (which
// outlives the inbound request). The inbound receipt is already durable at
// this point, so configuration problems here are logged and skipped, never
// surfaced to the inbound caller.
func (r *Relay) fanOut(lookupCtx, dispatchCtx context.Context, accountID string, event models.ConversionEvent) {
	shares, err := r.shares.ListSharesForAccount(lookupCtx, accountID)
	if err != nil {
		r.logger.Error("share lookup failed, skipping dispatch", "account_id", accountID, "event_id", event.EventID, "error", err)
		return
	}

	for _, share := range shares {
		partner, err := r.partners.FindPartnerByName(lookupCtx, share.PartnerName)
		if errors.Is(err, store.ErrNotFound) {
			r.logger.Warn("share references unknown partner, skipping", "partner_name", share.PartnerName, "account_id", accountID)
			continue
		}
		if err != nil {
			r.logger.Error("partner lookup failed, skipping", "partner_name", share.PartnerName, "error", err)
			continue
		}
		if partner.Status != models.PartnerActive {
			continue
		}

		r.spawnDispatch(dispatchCtx, partner, event)
	}
}

// spawnDispatch starts one detached dispatch unless the relay is draining.
// The draining flag and the Add are under the same lock so no Add can race
// Drain's Wait after the counter reaches zero.
func (r *Relay) spawnDispatch(ctx context.Context, partner models.Partner, event models.ConversionEvent) {
	r.mu.Lock()
	if r.draining {
		r.mu.Unlock()
		r.logger.Warn("relay draining, dispatch skipped", "partner_name", partner.Name, "event_id", event.EventID)
		return
	}
	r.inflight.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.inflight.Done()
		r.Dispatch(ctx, partner, event)
	}()
}

// Drain stops accepting new dispatches and blocks until all in-flight ones
// have completed and been logged. Called from the shutdown sequence after
// the HTTP listener stops.
func (r *Relay) Drain() {
	r.mu.Lock()
	r.draining = true
	r.mu.Unlock()
	r.inflight.Wait()
}

func inboundLog(event models.ConversionEvent, matched bool) models.InboundLog {
	return models.InboundLog{
		EventID:   event.EventID,
		Type:      "postback",
		Success:   matched,
		ClickID:   event.ClickID,
		SourceIP:  event.SourceIP,
		Timestamp: time.Now().UTC(),
	}
}
