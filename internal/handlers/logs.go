package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nandanihada/Survey-AI-sub001/internal/models"
	"github.com/nandanihada/Survey-AI-sub001/internal/store"
)

// RegisterLogRoutes registers the audit query surface consumed by operator
// tooling. Both listings are newest-first; limit defaults to 50, capped at
// 500 by the store.
func RegisterLogRoutes(r gin.IRoutes, st *store.PostgresStore) {
	// GET /logs/inbound?click_id=&event_id=&limit=
	r.GET("/logs/inbound", func(c *gin.Context) {
		entries, err := st.ListInbound(c.Request.Context(), models.LogFilter{
			ClickID: c.Query("click_id"),
			EventID: c.Query("event_id"),
			Limit:   queryInt(c, "limit"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}
		if entries == nil {
			entries = []models.InboundLog{}
		}
		c.JSON(http.StatusOK, gin.H{"logs": entries})
	})

	// GET /logs/outbound?partner_name=&event_id=&limit=
	r.GET("/logs/outbound", func(c *gin.Context) {
		attempts, err := st.ListOutbound(c.Request.Context(), models.LogFilter{
			PartnerName: c.Query("partner_name"),
			EventID:     c.Query("event_id"),
			Limit:       queryInt(c, "limit"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}
		if attempts == nil {
			attempts = []models.PostbackAttempt{}
		}
		c.JSON(http.StatusOK, gin.H{"logs": attempts})
	})
}

// queryInt parses an optional integer query parameter; 0 means unset.
func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
