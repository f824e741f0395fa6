package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"prizedraw/config"
	"prizedraw/database"
	"prizedraw/domain/events"
	"prizedraw/domain/services"
	"prizedraw/metrics"
	"prizedraw/payments"
	"prizedraw/repository"
	"prizedraw/server"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting prize draw service...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	provider := payments.NewClient(payments.Config{
		BaseURL:   cfg.PaymentAPIBaseURL,
		APIKey:    cfg.PaymentAPIKey,
		IPNSecret: cfg.PaymentIPNSecret,
	})

	depositService := services.NewDepositService(services.DepositConfig{
		MinimumDeposit: cfg.MinimumDeposit,
		ReferralBonus:  cfg.ReferralBonus,
		CallbackURL:    cfg.PaymentCallbackURL,
		PayCurrency:    cfg.PayCurrency,
		PriceCurrency:  cfg.PriceCurrency,
	}, provider, uowFactory)

	entryService := services.NewEntryService(services.EntryConfig{
		BaseTicketCap: cfg.BaseTicketCap,
		ReferralTiers: cfg.ReferralTiers,
	}, uowFactory)

	drawService := services.NewDrawService(uowFactory)
	settlementService := services.NewSettlementService(uowFactory)

	withdrawalService := services.NewWithdrawalService(services.WithdrawalConfig{
		MinimumWithdrawal: cfg.MinimumWithdrawal,
		FeePercent:        cfg.WithdrawalFeePercent,
	}, uowFactory)

	walletService := services.NewWalletService(uowFactory)

	m := metrics.New(prometheus.DefaultRegisterer)

	srv := server.New(server.Deps{
		Deposits:    depositService,
		Entries:     entryService,
		Draws:       drawService,
		Settlement:  settlementService,
		Withdrawals: withdrawalService,
		Wallets:     walletService,
		UowFactory:  uowFactory,
		Metrics:     m,
		JWTSecret:   cfg.JWTSecret,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Infof("HTTP server listening in %s mode", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	log.Info("Shutdown complete")
	return nil
}
