package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ecron24/delmas-app-sub000/internal/auth"
	"github.com/ecron24/delmas-app-sub000/internal/config"
	"github.com/ecron24/delmas-app-sub000/internal/delivery"
	"github.com/ecron24/delmas-app-sub000/internal/handlers"
	"github.com/ecron24/delmas-app-sub000/internal/httpx"
	"github.com/ecron24/delmas-app-sub000/internal/mailer"
	"github.com/ecron24/delmas-app-sub000/internal/models"
	"github.com/ecron24/delmas-app-sub000/internal/pdf"
	"github.com/ecron24/delmas-app-sub000/internal/services"
	"github.com/ecron24/delmas-app-sub000/internal/storage"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	// Sessions must refer to an existing operator.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – ignore detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	store := storage.NewFileStore(cfg.StorageDir, cfg.StorageBaseURL, cfg.SigningSecret)

	var deliverer services.Deliverer
	if cfg.DispatchMode == config.DispatchModeWebhook && cfg.WebhookURL != "" {
		deliverer = delivery.NewWebhookDeliverer(cfg.WebhookURL, 15*time.Second)
	} else {
		deliverer = delivery.NewEmailDeliverer(mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom))
	}

	lifecycle := services.NewLifecycleService(db)
	builder := services.NewInvoiceBuilder(db)
	dispatcher := services.NewDispatcher(db, pdf.NewRenderer(), store, deliverer, time.Duration(cfg.SignedURLTTL)*time.Second)

	ih := handlers.NewInvoiceHandler(db, lifecycle, dispatcher)
	vh := handlers.NewInterventionHandler(db, builder)
	fh := handlers.NewFileHandler(store)

	protect := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(http.HandlerFunc(h))
	}

	mux.Handle("GET /invoices", protect(ih.List))
	mux.Handle("GET /invoices/{id}", protect(ih.Get))
	mux.Handle("PUT /invoices/{id}", protect(ih.Save))
	mux.Handle("POST /invoices/{id}/validate", protect(ih.Validate))
	mux.Handle("POST /invoices/{id}/send-to-client", protect(ih.SendToClient))
	mux.Handle("POST /invoices/{id}/mark-paid", protect(ih.MarkPaid))
	mux.Handle("GET /invoices/{id}/pdf", protect(ih.PDF))

	mux.Handle("POST /interventions/{id}/complete", protect(vh.Complete))
	mux.Handle("POST /interventions/{id}/invoice", protect(vh.BuildInvoice))

	// Signed URL target; the signature is the credential.
	mux.HandleFunc("GET /files/{path...}", fh.Serve)

	return auth.Middleware(withRecover(withLogging(mux)))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
