package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Cheertaboi/coupon-keeper/internal/api/handlers"
)

// NewRouter builds the HTTP router for the coupon keeper
func NewRouter(coupons *handlers.CouponHandler, detection *handlers.DetectionHandler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Route("/coupons", func(r chi.Router) {
		r.Get("/", coupons.ListCoupons)
		r.Post("/", coupons.CreateCoupon)
		r.Get("/categories", coupons.Categories)
		r.Get("/search", coupons.Search)
		r.Get("/expired", coupons.Expired)
		r.Get("/expiring", coupons.ExpiringSoon)
		r.Get("/{id}", coupons.GetCoupon)
		r.Delete("/{id}", coupons.DeleteCoupon)
		r.Post("/{id}/copy", coupons.CopyCode)
	})

	r.Route("/detection", func(r chi.Router) {
		r.Post("/scan", detection.Scan)
		r.Post("/simulate", detection.Simulate)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", detection.GetSettings)
			r.Put("/", detection.ReplaceSettings)
			r.Post("/enabled", detection.SetEnabled)
			r.Post("/sensitivity", detection.SetSensitivity)
			r.Post("/trusted/{domain}", detection.AddTrusted)
			r.Delete("/trusted/{domain}", detection.RemoveTrusted)
			r.Post("/blacklisted/{domain}", detection.AddBlacklisted)
			r.Delete("/blacklisted/{domain}", detection.RemoveBlacklisted)
		})

		r.Get("/monitor", detection.MonitorStatus)
		r.Post("/monitor/start", detection.StartMonitor)
		r.Post("/monitor/stop", detection.StopMonitor)
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
