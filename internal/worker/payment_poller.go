package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/freshcart/internal/adapter/payment"
	"github.com/polkiloo/freshcart/internal/domain/model"
)

// PaymentFacade exposes the subset of application functionality required by the poller.
type PaymentFacade interface {
	AwaitingPayment(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)
	ReconcilePayment(ctx context.Context, order model.Order) (bool, error)
}

// PaymentPoller asks the payment provider about online orders whose
// completion callback never arrived. Orders younger than minAge are left to
// the client verify call and the webhook.
type PaymentPoller struct {
	facade       PaymentFacade
	pollInterval time.Duration
	minAge       time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger
	now          func() time.Time

	jobs     chan model.Order
	inFlight map[int64]struct{}
	flightMu sync.Mutex
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	mu       sync.Mutex
}

// NewPaymentPoller constructs the payment poller worker pool.
func NewPaymentPoller(facade PaymentFacade, pollInterval, minAge time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentPoller {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &PaymentPoller{
		facade:       facade,
		pollInterval: pollInterval,
		minAge:       minAge,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		now:          time.Now,
		jobs:         make(chan model.Order, batchSize*workers),
		inFlight:     make(map[int64]struct{}),
	}
}

// Start launches background polling.
func (p *PaymentPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop cancels polling and waits for all workers to finish.
func (p *PaymentPoller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentPoller) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PaymentPoller) fetchAndDispatch(ctx context.Context) {
	cutoff := p.now().Add(-p.minAge)
	orders, err := p.facade.AwaitingPayment(ctx, cutoff, p.batchSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "fetch orders awaiting payment failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		if !p.claim(order.ID) {
			continue
		}
		select {
		case <-ctx.Done():
			p.release(order.ID)
			return
		case p.jobs <- order:
		}
	}
}

func (p *PaymentPoller) claim(id int64) bool {
	p.flightMu.Lock()
	defer p.flightMu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *PaymentPoller) release(id int64) {
	p.flightMu.Lock()
	delete(p.inFlight, id)
	p.flightMu.Unlock()
}

func (p *PaymentPoller) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
			p.release(order.ID)
		}
	}
}

func (p *PaymentPoller) handleOrder(ctx context.Context, order model.Order) {
	settled, err := p.facade.ReconcilePayment(ctx, order)
	if err != nil {
		var limited payment.TooManyRequestsError
		if errors.As(err, &limited) {
			p.logger.WarnContext(ctx, "payment api rate limited", slog.Duration("retry_after", limited.RetryAfter))
			sleep(ctx, limited.RetryAfter)
			return
		}
		p.logger.ErrorContext(ctx, "payment reconcile failed", slog.String("order", order.Number), slog.String("error", err.Error()))
		return
	}
	if settled {
		p.logger.InfoContext(ctx, "payment settled by poller", slog.String("order", order.Number))
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
