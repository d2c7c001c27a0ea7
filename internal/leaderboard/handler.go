package leaderboard

import (
	"context"
	"net/http"
	"strconv"

	"referral-graph/internal/apierrors"
	"referral-graph/internal/observability"

	"github.com/gin-gonic/gin"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Ranker serves leaderboard reads.
type Ranker interface {
	IsEnabled() bool
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	GetReferralCount(ctx context.Context, contactID string) (int64, error)
}

// Handler handles HTTP requests for the leaderboard API
type Handler struct {
	ranker Ranker
	logger *observability.Logger
}

// NewHandler creates a new leaderboard handler
func NewHandler(ranker Ranker, logger *observability.Logger) *Handler {
	return &Handler{
		ranker: ranker,
		logger: logger,
	}
}

// HandleGetTop handles GET /api/leaderboard
func (h *Handler) HandleGetTop(c *gin.Context) {
	ctx := c.Request.Context()

	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxTopLimit {
			apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	if !h.ranker.IsEnabled() {
		h.respondDisabled(c)
		return
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "limit", Value: limit})

	entries, err := h.ranker.Top(ctx, limit)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// HandleGetReferralCount handles GET /api/leaderboard/:contact_id
func (h *Handler) HandleGetReferralCount(c *gin.Context) {
	ctx := c.Request.Context()
	contactID := c.Param("contact_id")

	if !h.ranker.IsEnabled() {
		h.respondDisabled(c)
		return
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "contact_id", Value: contactID})

	count, err := h.ranker.GetReferralCount(ctx, contactID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact_id": contactID, "referrals": count})
}

func (h *Handler) respondDisabled(c *gin.Context) {
	apierrors.RespondWithError(c, apierrors.ServiceUnavailable(
		apierrors.CodeLeaderboardUnavailable,
		"Leaderboard is not enabled on this server.",
		ErrLeaderboardDisabled,
	))
}
