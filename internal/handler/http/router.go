package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sitework/workforce-backend-go/internal/handler/http/middleware"
	"github.com/sitework/workforce-backend-go/internal/pkg/jwt"
	"golang.org/x/time/rate"
)

type RouterOptions struct {
	Env            string
	Version        string
	LogLevel       slog.Level
	AllowedOrigins []string

	// Redis backs the Idempotency-Key replay on record routes. Nil disables it.
	Redis          redis.Cmdable
	IdempotencyTTL time.Duration

	RateLimit rate.Limit
	RateBurst int
}

func NewRouter(JWTService jwt.Service, opts RouterOptions, payrollHandler PayrollHandler, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workforce-payroll"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"Content-Disposition", middleware.ReplayedHeader},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	mutationLimit := middleware.RateLimitByAdmin(opts.RateLimit, opts.RateBurst)
	idempotent := func(next http.Handler) http.Handler { return next }
	if opts.Redis != nil {
		idempotent = middleware.Idempotency(opts.Redis, opts.IdempotencyTTL)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(opts.RateLimit*4, opts.RateBurst*4))

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Post("/worktime", payrollHandler.ComputeWorkTime)
			r.Get("/utility/shares", payrollHandler.GetUtilityShares)

			r.Route("/attendances/{id}", func(r chi.Router) {
				r.Get("/", attendanceHandler.Get)
				r.With(mutationLimit).Post("/verify", attendanceHandler.Verify)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/monthly", payrollHandler.RunMonthlyPayroll)
				r.Get("/semi-monthly", payrollHandler.RunSemiMonthlyPayroll)

				r.Group(func(r chi.Router) {
					r.Use(mutationLimit)
					r.Use(idempotent)
					r.Post("/monthly/record", payrollHandler.RecordMonthlyPayroll)
					r.Post("/semi-monthly/record", payrollHandler.RecordSemiMonthlyPayroll)
				})

				r.Get("/history", payrollHandler.GetPayrollHistory)
				r.Get("/history/export", payrollHandler.ExportPayrollHistory)

				r.With(mutationLimit).Put("/records/{id}", payrollHandler.UpdatePayrollRecord)
			})
		})
	})
	return r
}
