// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"haulbase/internal/config"
	httptransport "haulbase/internal/http"
	"haulbase/internal/infra"
	"haulbase/internal/modules/dispatch"
	"haulbase/internal/modules/fare"
	"haulbase/internal/modules/profit"
	"haulbase/internal/modules/rate"
	"haulbase/internal/modules/settlement"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	rateStore := rate.NewStore(dbPool, redisClient, cfg.Redis.CacheTTL)
	rateSvc := rate.NewService(rateStore)

	fareSvc := fare.NewService(rateSvc)

	dispatchStore := dispatch.NewStore(dbPool)
	dispatchSvc := dispatch.NewService(dispatchStore)

	settlementStore := settlement.NewStore(dbPool)
	settlementSvc := settlement.NewService(settlementStore, dispatchSvc)

	evaluator := profit.NewEvaluator(cfg.Profit.ProfitThreshold, cfg.Profit.BreakEvenThreshold)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Rates:       rateSvc,
		Fares:       fareSvc,
		Settlements: settlementSvc,
		Dispatches:  dispatchSvc,
		Profit:      evaluator,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("[api] listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
