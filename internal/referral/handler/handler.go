package handler

import (
	"context"
	"net/http"

	"referral-graph/internal/apierrors"
	"referral-graph/internal/observability"
	"referral-graph/internal/referral/notifier"
	"referral-graph/internal/store"

	"github.com/gin-gonic/gin"
)

// ReferralService is the set of repository operations exposed over HTTP.
type ReferralService interface {
	CreateRecord(ctx context.Context, contactID, referrerID string) error
	UpdateRecord(ctx context.Context, contactID, referrerID string) error
	DeleteRecord(ctx context.Context, contactID string) (bool, error)
	FetchRecord(ctx context.Context, contactID string) (*store.ReferralRecord, error)
	FetchReferrer(ctx context.Context, contactID string) (*store.ReferralRecord, error)
	FetchReferredContacts(ctx context.Context, contactID string) ([]store.ReferralRecord, error)
	ResetAll(ctx context.Context) error
}

// Observer opens live snapshot subscriptions.
type Observer interface {
	Observe(ctx context.Context, contactID string) (*notifier.Subscription, error)
}

// Options configures the referral handler.
type Options struct {
	// AllowReset enables DELETE /api/referrals.
	AllowReset bool
	// AllowedOrigins restricts websocket upgrades. Empty allows any origin.
	AllowedOrigins []string
}

type Handler struct {
	processor ReferralService
	observer  Observer
	logger    *observability.Logger
	opts      Options
}

func New(processor ReferralService, observer Observer, logger *observability.Logger, opts Options) Handler {
	return Handler{
		processor: processor,
		observer:  observer,
		logger:    logger,
		opts:      opts,
	}
}

// CreateReferralRequest is the body of POST /api/referrals
type CreateReferralRequest struct {
	ContactID  string  `json:"contact_id" binding:"required,max=255"`
	ReferrerID *string `json:"referrer_id" binding:"omitempty,max=255"`
}

// UpdateReferralRequest is the body of PUT /api/referrals/:contact_id
type UpdateReferralRequest struct {
	ReferrerID *string `json:"referrer_id" binding:"omitempty,max=255"`
}

func referrerOrEmpty(referrerID *string) string {
	if referrerID == nil {
		return ""
	}
	return *referrerID
}

// HandleCreateReferral handles POST /api/referrals
func (h *Handler) HandleCreateReferral(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}
	referrerID := referrerOrEmpty(req.ReferrerID)

	if err := h.processor.CreateRecord(ctx, req.ContactID, referrerID); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": store.NewReferralRecord(req.ContactID, referrerID)})
}

// HandleUpdateReferral handles PUT /api/referrals/:contact_id
func (h *Handler) HandleUpdateReferral(c *gin.Context) {
	ctx := c.Request.Context()
	contactID := c.Param("contact_id")

	var req UpdateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}
	referrerID := referrerOrEmpty(req.ReferrerID)

	if err := h.processor.UpdateRecord(ctx, contactID, referrerID); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": store.NewReferralRecord(contactID, referrerID)})
}

// HandleDeleteReferral handles DELETE /api/referrals/:contact_id
func (h *Handler) HandleDeleteReferral(c *gin.Context) {
	ctx := c.Request.Context()

	deleted, err := h.processor.DeleteRecord(ctx, c.Param("contact_id"))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// HandleGetReferral handles GET /api/referrals/:contact_id
func (h *Handler) HandleGetReferral(c *gin.Context) {
	ctx := c.Request.Context()

	record, err := h.processor.FetchRecord(ctx, c.Param("contact_id"))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// HandleGetReferrer handles GET /api/referrals/:contact_id/referrer
func (h *Handler) HandleGetReferrer(c *gin.Context) {
	ctx := c.Request.Context()

	referrer, err := h.processor.FetchReferrer(ctx, c.Param("contact_id"))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"referrer": referrer})
}

// HandleGetReferred handles GET /api/referrals/:contact_id/referred
func (h *Handler) HandleGetReferred(c *gin.Context) {
	ctx := c.Request.Context()

	referred, err := h.processor.FetchReferredContacts(ctx, c.Param("contact_id"))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	// Ensure referred is never null - return empty array instead
	if referred == nil {
		referred = []store.ReferralRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"referred": referred})
}

// HandleResetReferrals handles DELETE /api/referrals
func (h *Handler) HandleResetReferrals(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.opts.AllowReset {
		apierrors.RespondWithError(c, apierrors.Forbidden(apierrors.CodeResetDisabled, "Reset is disabled on this server"))
		return
	}

	if err := h.processor.ResetAll(ctx); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	h.logger.Warn(ctx, "referral table reset over HTTP")
	c.JSON(http.StatusOK, gin.H{"reset": true})
}
