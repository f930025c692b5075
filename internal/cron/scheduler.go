package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"paygate/internal/notify"
	"paygate/internal/payment/esewa"
	"paygate/internal/repository"
)

// reconcileBatch bounds how many stale transactions one tick polls, so
// a backlog cannot stack ticks on top of each other.
const reconcileBatch = 25

// minPendingAge keeps the reconciler off transactions the customer may
// still be completing in the payment form.
const minPendingAge = 5 * time.Minute

// Scheduler runs the background jobs: re-polling unresolved
// transactions against the gateway and the daily summary report.
type Scheduler struct {
	cron         *cron.Cron
	transactions *repository.TransactionRepository
	resolver     *repository.GatewayResolver
	notifier     notify.Notifier
	logger       *zap.Logger
	esewaBaseURL string
}

// New creates a new cron scheduler.
func New(
	transactions *repository.TransactionRepository,
	resolver *repository.GatewayResolver,
	notifier notify.Notifier,
	logger *zap.Logger,
	esewaBaseURL string,
) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithSeconds()),
		transactions: transactions,
		resolver:     resolver,
		notifier:     notifier,
		logger:       logger,
		esewaBaseURL: esewaBaseURL,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler...")

	// Reconcile stale PENDING/INITIATED transactions - every 5 minutes
	s.cron.AddFunc("0 */5 * * * *", func() {
		s.logger.Debug("Running: reconcile pending payments")
		s.reconcilePending()
	})

	// Daily payment summary - at 23:45
	s.cron.AddFunc("0 45 23 * * *", func() {
		s.logger.Debug("Running: daily payment summary")
		s.dailySummary()
	})

	s.cron.Start()
}

// Stop stops the scheduler and returns a context that is done once
// running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// reconcilePending polls the gateway for transactions stuck in
// INITIATED or PENDING. One poll per transaction per tick; PENDING
// stays PENDING until the gateway says otherwise.
func (s *Scheduler) reconcilePending() {
	txs, err := s.transactions.FindPendingOlderThan(minPendingAge, reconcileBatch)
	if err != nil {
		s.logger.Error("failed to load pending transactions", zap.Error(err))
		return
	}
	if len(txs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, tx := range txs {
		// Only eSewa has an out-of-band status endpoint keyed by
		// transaction uuid; Khalti transactions resolve via lookup at
		// verification time.
		if tx.Method != "esewa" {
			continue
		}

		gw, err := s.resolver.Resolve(tx.Site, "esewa")
		if err != nil {
			s.logger.Warn("no gateway credentials for pending transaction",
				zap.String("site", tx.Site), zap.String("transaction_uuid", tx.TransactionUUID))
			continue
		}

		svc, err := esewa.New(esewa.Config{
			MerchantCode: gw.MerchantCode,
			SecretKey:    gw.SecretKey,
			BaseURL:      s.esewaBaseURL,
		}, s.logger)
		if err != nil {
			s.logger.Warn("gateway credentials invalid", zap.String("site", tx.Site), zap.Error(err))
			continue
		}

		outcome, err := svc.CheckStatus(ctx, gw.MerchantCode, tx.TotalAmount, tx.TransactionUUID)
		if err != nil {
			// Transport and gateway errors are retryable; the next tick
			// will try again.
			s.logger.Warn("status poll failed",
				zap.String("transaction_uuid", tx.TransactionUUID), zap.Error(err))
			continue
		}

		if outcome.Status == tx.Status {
			continue
		}

		if err := s.transactions.UpdateStatus(tx.TransactionUUID, outcome.Status, outcome.RefID); err != nil {
			s.logger.Error("failed to update reconciled transaction",
				zap.String("transaction_uuid", tx.TransactionUUID), zap.Error(err))
			continue
		}

		s.logger.Info("transaction reconciled",
			zap.String("transaction_uuid", tx.TransactionUUID),
			zap.String("from", tx.Status),
			zap.String("to", outcome.Status))

		if outcome.ShouldProvideService {
			s.notifier.PaymentVerified(&tx, outcome)
		}
	}
}

func (s *Scheduler) dailySummary() {
	counts, err := s.transactions.CountByStatusSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		s.logger.Error("failed to build daily summary", zap.Error(err))
		return
	}
	if len(counts) == 0 {
		return
	}
	s.notifier.DailySummary(counts)
}
