package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanihada/Survey-AI-sub001/internal/models"
	"github.com/nandanihada/Survey-AI-sub001/internal/relay"
)

// RegisterPostbackRoutes registers the public conversion-callback endpoint.
//
// GET|POST /postback
//   - Accepts query or form parameters (click_id/sid1, payout, currency, ...)
//   - 200 for any processed event, matched or not, so partners never
//     retry-storm on unknown click ids
//   - 400 only when no identifying parameter is present at all
//   - 5xx only when storage is unavailable and no receipt can be logged
func RegisterPostbackRoutes(r gin.IRoutes, rl *relay.Relay) {
	handle := func(c *gin.Context) {
		params, err := collectParams(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
			return
		}

		result, err := rl.HandleInbound(c.Request.Context(), params, c.ClientIP())
		if errors.Is(err, models.ErrNoClickID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
			return
		}

		c.JSON(http.StatusOK, models.PostbackAck{
			Status:  "ok",
			Matched: result.Matched,
			EventID: result.EventID,
		})
	}

	r.GET("/postback", handle)
	r.POST("/postback", handle)
}

// collectParams flattens query and form parameters into one map, keeping
// net/http's precedence (body values before query-string values).
func collectParams(c *gin.Context) (map[string]string, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}

	params := make(map[string]string, len(c.Request.Form))
	for key, values := range c.Request.Form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params, nil
}
