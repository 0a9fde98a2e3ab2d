package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitework/workforce-backend-go/internal/config"
	"github.com/sitework/workforce-backend-go/internal/domain/payroll"
	appHTTP "github.com/sitework/workforce-backend-go/internal/handler/http"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
	"github.com/sitework/workforce-backend-go/internal/pkg/jwt"
	"github.com/sitework/workforce-backend-go/internal/pkg/redis"
	"github.com/sitework/workforce-backend-go/internal/repository/postgresql"
	attendanceService "github.com/sitework/workforce-backend-go/internal/service/attendance"
	payrollService "github.com/sitework/workforce-backend-go/internal/service/payroll"
	"golang.org/x/time/rate"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	rdb, err := redis.NewClient(ctx, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	txManager := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	payrollSvc := payrollService.NewPayrollService(txManager, payrollService.Repositories{
		Employee:   employeeRepo,
		Attendance: attendanceRepo,
		Utility:    postgresql.NewUtilityRepository(db),
		Deduction:  postgresql.NewDeductionTypeRepository(db),
		Advance:    postgresql.NewAdvanceRepository(db),
		Savings:    postgresql.NewSavingsRepository(db),
		Payroll:    postgresql.NewPayrollRepository(db),
		Outbox:     postgresql.NewOutboxRepository(db),
	}, payrollService.Options{
		Rates:      payroll.DefaultRates(),
		EventTopic: cfg.Kafka.PayrollTopic,
		Workers:    cfg.Payroll.Workers,
	})
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.AllowedOrigins,
			Redis:          rdb,
			IdempotencyTTL: cfg.Redis.IdempotencyTTL,
			RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:      cfg.RateLimit.Burst,
		},
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
