// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"

	"haulbase/internal/http/handlers"
	"haulbase/internal/http/middleware"
	"haulbase/internal/modules/dispatch"
	"haulbase/internal/modules/fare"
	"haulbase/internal/modules/profit"
	"haulbase/internal/modules/rate"
	"haulbase/internal/modules/settlement"
)

type RouterDeps struct {
	Rates       *rate.Service
	Fares       *fare.Service
	Settlements *settlement.Service
	Dispatches  *dispatch.Service
	Profit      *profit.Evaluator
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	quoteHandler := handlers.NewQuoteHandler(deps.Fares)
	r.POST("/api/quotes", quoteHandler.Quote)
	r.GET("/api/rates/calculate", quoteHandler.Calculate)

	rateHandler := handlers.NewRateHandler(deps.Rates)
	r.POST("/api/rates/base", rateHandler.PutBase)
	r.POST("/api/rates/addons", rateHandler.PutAddons)
	r.POST("/api/center-fares", rateHandler.PutCenterFare)

	settlementHandler := handlers.NewSettlementHandler(deps.Settlements)
	r.POST("/api/settlements/preview", settlementHandler.Preview)
	r.POST("/api/settlements", settlementHandler.Finalize)
	r.GET("/api/settlements/:id", settlementHandler.Get)
	r.POST("/api/settlements/:id/confirm", settlementHandler.Confirm)
	r.POST("/api/settlements/:id/paid", settlementHandler.MarkPaid)
	r.PATCH("/api/settlements/:id", settlementHandler.Update)
	r.DELETE("/api/settlements/:id", settlementHandler.Delete)

	tripHandler := handlers.NewTripHandler(deps.Dispatches, deps.Profit)
	r.POST("/api/trips", tripHandler.Create)
	r.POST("/api/trips/:id/dispatches", tripHandler.Assign)
	r.PUT("/api/trips/:id/fare", tripHandler.SetFare)
	r.GET("/api/trips/:id/profitability", tripHandler.Profitability)
	r.GET("/api/drivers/:id/dispatches", tripHandler.ListDriverMonth)

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	return r
}
