package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanihada/Survey-AI-sub001/internal/auth"
	"github.com/nandanihada/Survey-AI-sub001/internal/models"
	"github.com/nandanihada/Survey-AI-sub001/internal/store"
)

// RegisterPartnerRoutes registers the operator configuration surface for
// partners and shares. All routes require X-API-Key.
func RegisterPartnerRoutes(r gin.IRoutes, st *store.PostgresStore) {
	// POST /partners
	// Name is the unique join key; a duplicate is rejected with 409.
	r.POST("/partners", func(c *gin.Context) {
		var req models.PartnerCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		if req.Name == "" || req.URL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and url required"})
			return
		}
		if req.Status == "" {
			req.Status = models.PartnerActive
		}
		if req.Status != models.PartnerActive && req.Status != models.PartnerInactive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
			return
		}

		partner := models.Partner{
			Name:      req.Name,
			URL:       req.URL,
			Status:    req.Status,
			CreatedAt: time.Now().UTC(),
		}
		err := st.CreatePartner(c.Request.Context(), partner)
		if errors.Is(err, store.ErrDuplicateName) {
			c.JSON(http.StatusConflict, gin.H{"error": "partner name already exists"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db insert failed"})
			return
		}
		slog.Info("partner created", "name", partner.Name, "status", partner.Status, "operator", auth.Operator(c))
		c.JSON(http.StatusCreated, partner)
	})

	// GET /partners?status=active
	r.GET("/partners", func(c *gin.Context) {
		var partners []models.Partner
		var err error
		switch c.Query("status") {
		case "":
			partners, err = st.ListPartners(c.Request.Context())
		case models.PartnerActive:
			partners, err = st.ListActivePartners(c.Request.Context())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "status filter must be active"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}
		if partners == nil {
			partners = []models.Partner{}
		}
		c.JSON(http.StatusOK, gin.H{"partners": partners})
	})

	// PATCH /partners/:name/status
	r.PATCH("/partners/:name/status", func(c *gin.Context) {
		var req models.PartnerStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		if req.Status != models.PartnerActive && req.Status != models.PartnerInactive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
			return
		}

		err := st.UpdatePartnerStatus(c.Request.Context(), c.Param("name"), req.Status)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db update failed"})
			return
		}
		slog.Info("partner status changed", "name", c.Param("name"), "status", req.Status, "operator", auth.Operator(c))
		c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "status": req.Status})
	})

	// POST /shares
	// A share may name a partner that does not exist yet; dispatch tolerates
	// the gap, so configuration order is not enforced here.
	r.POST("/shares", func(c *gin.Context) {
		var req models.ShareCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		if req.AccountID == "" || req.PartnerName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "account_id and partner_name required"})
			return
		}

		share := models.PostbackShare{
			AccountID:   req.AccountID,
			PartnerName: req.PartnerName,
			CreatedAt:   time.Now().UTC(),
		}
		if err := st.CreateShare(c.Request.Context(), share); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db insert failed"})
			return
		}
		slog.Info("share created", "account_id", share.AccountID, "partner_name", share.PartnerName, "operator", auth.Operator(c))
		c.JSON(http.StatusCreated, share)
	})

	// GET /shares?account_id=...
	r.GET("/shares", func(c *gin.Context) {
		accountID := c.Query("account_id")
		if accountID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "account_id required"})
			return
		}
		shares, err := st.ListSharesForAccount(c.Request.Context(), accountID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}
		if shares == nil {
			shares = []models.PostbackShare{}
		}
		c.JSON(http.StatusOK, gin.H{"shares": shares})
	})
}
