package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/hockey-gm/internal/api/handlers"
	"github.com/jstittsworth/hockey-gm/internal/api/middleware"
)

// SetupRoutes wires every endpoint onto the given group. Mutating
// endpoints sit behind the rate limiter; reads do not.
func SetupRoutes(group *gin.RouterGroup, deps *handlers.Deps) {
	leagueHandler := handlers.NewLeagueHandler(deps)
	controlHandler := handlers.NewControlHandler(deps)
	rosterHandler := handlers.NewRosterHandler(deps)
	coachHandler := handlers.NewCoachHandler(deps)
	tradeHandler := handlers.NewTradeHandler(deps)
	historyHandler := handlers.NewHistoryHandler(deps)

	// League reads
	group.GET("/meta", leagueHandler.GetMeta)
	group.GET("/home", leagueHandler.GetHome)
	group.GET("/standings", leagueHandler.GetStandings)
	group.GET("/leaders", leagueHandler.GetLeaders)
	group.GET("/teams", leagueHandler.GetTeams)
	group.GET("/teams/:id", leagueHandler.GetTeam)
	group.GET("/players/:id", leagueHandler.GetPlayer)
	group.GET("/day-board", leagueHandler.GetDayBoard)
	group.GET("/schedule", leagueHandler.GetSchedule)
	group.GET("/playoffs", leagueHandler.GetPlayoffs)
	group.GET("/franchise/history", leagueHandler.GetFranchiseHistory)
	group.GET("/franchise/hall-of-fame", leagueHandler.GetHallOfFame)
	group.GET("/free-agents", leagueHandler.GetFreeAgents)

	// Archive reads
	group.GET("/games", historyHandler.GetGames)
	group.GET("/transactions", historyHandler.GetTransactions)
	group.GET("/series/:id/games", historyHandler.GetSeriesGames)

	// User team reads
	group.GET("/my/lines", rosterHandler.GetLines)
	group.GET("/my/needs", rosterHandler.GetNeeds)
	group.GET("/my/inbox", tradeHandler.GetInbox)
	group.GET("/my/coach-candidates", coachHandler.GetCandidates)

	// Mutations
	mutate := group.Group("")
	mutate.Use(middleware.RateLimit(deps.Cfg.RateLimitRPS, deps.Cfg.RateLimitBurst))
	{
		mutate.POST("/advance", controlHandler.Advance)
		mutate.POST("/reset", controlHandler.Reset)
		mutate.POST("/my/team", controlHandler.SelectTeam)
		mutate.POST("/my/strategy", controlHandler.SetStrategy)

		mutate.PUT("/my/lines", rosterHandler.SetLines)
		mutate.POST("/my/call-up", rosterHandler.CallUp)
		mutate.POST("/my/send-down", rosterHandler.SendDown)
		mutate.POST("/my/sign", rosterHandler.SignFreeAgent)
		mutate.POST("/my/extend", rosterHandler.ExtendContract)
		mutate.PUT("/my/trade-block", rosterHandler.SetTradeBlock)
		mutate.PUT("/my/needs", rosterHandler.SetNeeds)

		mutate.POST("/my/fire-coach", coachHandler.FireCoach)
		mutate.POST("/my/hire-coach", coachHandler.HireCoach)

		mutate.POST("/trades/evaluate", tradeHandler.Evaluate)
		mutate.POST("/trades/propose", tradeHandler.Propose)
		mutate.POST("/my/inbox/resolve", tradeHandler.ResolveInbox)
	}
}
