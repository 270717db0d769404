package router

import (
	"net/http"
	"time"

	"tendermarket/internal/controller"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(c *controller.Controller, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", c.Ping)

		r.Post("/tenders/new", c.NewTender)
		r.Get("/tenders", c.GetTenders)
		r.Get("/tenders/my", c.MyTenders)
		r.Get("/tenders/{tenderId}/status", c.TenderStatus)
		r.Put("/tenders/{tenderId}/status", c.SetTenderStatus)
		r.Patch("/tenders/{tenderId}/edit", c.EditTender)

		r.Post("/bids/new", c.NewBid)
		r.Get("/bids/my", c.MyBids)
		r.Get("/bids/{tenderId}/list", c.TenderBids)
		r.Get("/bids/{bidId}/status", c.BidStatus)
		r.Patch("/bids/{bidId}/edit", c.EditBid)
		r.Put("/bids/{bidId}/submit_decision", c.BidDecision)
		r.Put("/bids/{bidId}/feedback", c.BidFeedback)
		r.Get("/bids/{tenderId}/reviews", c.BidReviews)
	})

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
