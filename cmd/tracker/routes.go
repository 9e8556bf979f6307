package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	deleteactions "produkcja/http-server/actions/delete"
	getactions "produkcja/http-server/actions/get"
	recordactions "produkcja/http-server/actions/record"
	upactions "produkcja/http-server/actions/update"
	getcosts "produkcja/http-server/costs/get"
	upcosts "produkcja/http-server/costs/update"
	deleteorders "produkcja/http-server/orders/delete"
	getorders "produkcja/http-server/orders/get"
	saveorders "produkcja/http-server/orders/save"
	uporders "produkcja/http-server/orders/update"
	deleteproducts "produkcja/http-server/products/delete"
	getproducts "produkcja/http-server/products/get"
	saveproducts "produkcja/http-server/products/save"
	upproducts "produkcja/http-server/products/update"
	reporthandler "produkcja/http-server/report"
	getstats "produkcja/http-server/stats/get"
	synchandler "produkcja/http-server/sync"
	deleteusers "produkcja/http-server/users/delete"
	getusers "produkcja/http-server/users/get"
	loginusers "produkcja/http-server/users/login"
	saveusers "produkcja/http-server/users/save"
	upusers "produkcja/http-server/users/update"
	"produkcja/internal/config"
	"produkcja/internal/middleware/auth"
	"produkcja/internal/service/baselinker"
	"produkcja/internal/service/ledger"
	"produkcja/internal/service/report"
	"produkcja/internal/service/stats"
	"produkcja/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage,
	ledgerService *ledger.LedgerService, statsService *stats.StatsService,
	syncService *baselinker.SyncService, reportService *report.ReportService) *chi.Mux {

	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	// Вход по коду - единственный маршрут без user_id.
	router.Post("/api/users/login", loginusers.Login(log, storage))

	router.Group(func(r chi.Router) {
		r.Use(auth.Identify(log, storage))

		// Общие маршруты: каталог, заказы цеха, журнал.
		r.Get("/api/products", getproducts.Products(log, storage))
		r.Get("/api/products/shapes", getproducts.Shapes())
		r.Get("/api/products/fabrics", getproducts.Fabrics(log, storage))
		r.Get("/api/products/patterns", getproducts.Patterns(log, storage))
		r.Get("/api/products/sku/{sku}", getproducts.ProductBySKU(log, storage))
		r.Get("/api/products/{id}", getproducts.Product(log, storage))

		r.Get("/api/orders/active", getorders.WorkerOrders(log, storage))
		r.Get("/api/orders/{id}", getorders.Order(log, storage))

		r.Post("/api/actions", recordactions.Action(log, ledgerService))
		r.Get("/api/actions/my", getactions.MyActions(log, storage))
		r.Get("/api/actions/types", getactions.ActionTypes())
		r.Get("/api/positions/{positionID}", getorders.Position(log, storage))
		r.Get("/api/positions/{positionID}/actions", getactions.PositionActions(log, storage))
		r.Put("/api/actions/{id}", upactions.Action(log, ledgerService))
		r.Delete("/api/actions/{id}", deleteactions.Action(log, ledgerService))

		r.Get("/api/users/workers", getusers.Workers(log, storage))
		r.Get("/api/users/{id}", getusers.User(log, storage))

		// Административные маршруты.
		r.Group(func(ra chi.Router) {
			ra.Use(auth.RequireAdmin)

			ra.Get("/api/users", getusers.Users(log, storage))
			ra.Post("/api/users/workers", saveusers.Worker(log, storage))
			ra.Put("/api/users/workers/{id}", upusers.Worker(log, storage))
			ra.Delete("/api/users/workers/{id}", deleteusers.Worker(log, storage))

			ra.Post("/api/products", saveproducts.Product(log, storage))
			ra.Put("/api/products/{id}", upproducts.Product(log, storage))
			ra.Delete("/api/products/{id}", deleteproducts.Product(log, storage))

			ra.Get("/api/orders", getorders.Orders(log, storage))
			ra.Post("/api/orders", saveorders.Order(log, storage))
			ra.Put("/api/orders/{id}", uporders.Order(log, storage))
			ra.Put("/api/orders/{id}/status", uporders.Status(log, storage))
			ra.Put("/api/orders/bulk-status", uporders.BulkStatus(log, storage))
			ra.Put("/api/orders/{id}/shipment-date", uporders.ShipmentDate(log, storage))
			ra.Delete("/api/orders/{id}", deleteorders.Order(log, storage))

			ra.Post("/api/orders/{id}/positions", saveorders.Position(log, storage))
			ra.Put("/api/positions/{positionID}", uporders.PositionQuantity(log, storage))
			ra.Delete("/api/positions/{positionID}", deleteorders.Position(log, storage))

			ra.Get("/api/actions/history", getactions.History(log, storage))

			ra.Get("/api/costs/config", getcosts.Config(log, storage))
			ra.Put("/api/costs/config", upcosts.Config(log, storage))
			ra.Get("/api/costs/summary", getcosts.Summary(log, statsService))
			ra.Get("/api/costs/by-worker", getcosts.ByWorker(log, statsService))

			ra.Get("/api/stats/workers", getstats.WorkerStats(log, statsService))
			ra.Get("/api/stats/workers/summary", getstats.WorkerSummary(log, statsService))
			ra.Get("/api/stats/daily", getstats.Daily(log, statsService))
			ra.Get("/api/stats/breakdown", getstats.Breakdown(log, statsService))
			ra.Get("/api/stats/progress", getstats.Progress(log, statsService))

			ra.Post("/api/sync/trigger", synchandler.Trigger(log, syncService))
			ra.Get("/api/sync/status", synchandler.Status(log, storage))

			ra.Get("/api/report/worker-costs", reporthandler.WorkerCosts(log, reportService))
		})
	})

	return router
}
