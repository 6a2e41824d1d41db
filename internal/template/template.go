// Package template renders partner URL templates by substituting bracket
// ([CLICK_ID]) and curly ({clickid}) placeholders with conversion fields.
package template

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/nandanihada/Survey-AI-sub001/internal/models"
)

// tokenRe matches one placeholder in either delimiter style. Partners mix
// both forms freely, sometimes within one template.
var tokenRe = regexp.MustCompile(`\[([A-Za-z0-9_]+)\]|\{([A-Za-z0-9_]+)\}`)

// Render substitutes recognized placeholders in tmpl with values from event.
// Matching is case-insensitive and ignores underscores, so [CLICK_ID],
// {clickid} and {Click_Id} all resolve to the same field. Unknown tokens are
// left verbatim; absent fields substitute an empty string. Values are
// query-escaped. Render never fails and is idempotent for a fixed input.
func Render(tmpl string, event models.ConversionEvent) string {
	return tokenRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := strings.Trim(match, "[]{}")
		key = strings.ReplaceAll(strings.ToLower(key), "_", "")

		value, ok := fieldValue(key, event)
		if !ok {
			return match
		}
		return url.QueryEscape(value)
	})
}

// fieldValue resolves a normalized placeholder key to an event field.
// Aliases cover the vocabularies seen across partner integrations:
// [REWARD]/{payout}/{amount} are the same money field, {sid1} is the legacy
// click id, and {goal} mirrors {event_name}.
func fieldValue(key string, e models.ConversionEvent) (string, bool) {
	switch key {
	case "clickid", "sid1":
		return e.ClickID, true
	case "payout", "reward", "amount":
		return e.Payout, true
	case "currency":
		return e.Currency, true
	case "transactionid", "txid":
		return e.TransactionID, true
	case "status", "conversionstatus":
		return e.ConversionStatus, true
	case "offerid":
		return e.OfferID, true
	case "sub1":
		return e.Sub1, true
	case "sub2":
		return e.Sub2, true
	case "eventname", "goal":
		return e.EventName, true
	case "timestamp":
		if e.Timestamp.IsZero() {
			return "", true
		}
		return strconv.FormatInt(e.Timestamp.Unix(), 10), true
	}
	return "", false
}
