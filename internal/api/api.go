package api

import (
	"net/http"

	"referral-graph/internal/leaderboard"
	referralHandler "referral-graph/internal/referral/handler"

	"github.com/gin-gonic/gin"
)

type API struct {
	router             *gin.RouterGroup
	referralHandler    referralHandler.Handler
	leaderboardHandler *leaderboard.Handler
	writeLimit         gin.HandlerFunc
}

func New(router *gin.RouterGroup, referralHandler referralHandler.Handler, leaderboardHandler *leaderboard.Handler, writeLimit gin.HandlerFunc) API {
	return API{
		router:             router,
		referralHandler:    referralHandler,
		leaderboardHandler: leaderboardHandler,
		writeLimit:         writeLimit,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	apiGroup := a.router.Group("/api")
	{
		referralGroup := apiGroup.Group("/referrals")
		referralGroup.POST("", a.writeLimit, a.referralHandler.HandleCreateReferral)
		referralGroup.DELETE("", a.writeLimit, a.referralHandler.HandleResetReferrals)
		referralGroup.GET("/:contact_id", a.referralHandler.HandleGetReferral)
		referralGroup.PUT("/:contact_id", a.writeLimit, a.referralHandler.HandleUpdateReferral)
		referralGroup.DELETE("/:contact_id", a.writeLimit, a.referralHandler.HandleDeleteReferral)
		referralGroup.GET("/:contact_id/referrer", a.referralHandler.HandleGetReferrer)
		referralGroup.GET("/:contact_id/referred", a.referralHandler.HandleGetReferred)
		referralGroup.GET("/:contact_id/observe", a.referralHandler.HandleObserve)
	}
	{
		leaderboardGroup := apiGroup.Group("/leaderboard")
		leaderboardGroup.GET("", a.leaderboardHandler.HandleGetTop)
		leaderboardGroup.GET("/:contact_id", a.leaderboardHandler.HandleGetReferralCount)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
