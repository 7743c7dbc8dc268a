// Package publish offers encoded message batches to a publication handle,
// absorbing transient transport backpressure.
//
// Congestion and administrative pauses never consume the attempt budget; the
// wait they cause is bounded only by the caller's context. Unrecognized offer
// outcomes consume budget and eventually fail the send.
package publish

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360/telemsend/errors"
	"github.com/c360/telemsend/metric"
	"github.com/c360/telemsend/transport"
)

const (
	// DefaultAttempts is the budget for unrecognized offer outcomes.
	DefaultAttempts = 10
	// DefaultConnectTimeout bounds the wait for a subscriber connection.
	DefaultConnectTimeout = time.Second

	defaultOfferInterval = 10 * time.Millisecond
	defaultPollInterval  = 10 * time.Millisecond
)

// Sender drives the offer loop and the connection wait. The zero-value
// configuration is production-ready; tests inject a clock and sleeper.
type Sender struct {
	attempts      int
	offerInterval time.Duration
	pollInterval  time.Duration
	log           *slog.Logger
	metrics       *metric.Metrics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Sender
type Option func(*Sender)

// WithAttempts sets the attempt budget for unrecognized offer outcomes
func WithAttempts(n int) Option {
	return func(s *Sender) { s.attempts = n }
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) Option {
	return func(s *Sender) { s.log = log }
}

// WithMetrics attaches pipeline metrics
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Sender) { s.metrics = m }
}

// WithClock injects a deterministic clock and sleeper for tests
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(s *Sender) {
		s.now = now
		s.sleep = sleep
	}
}

// NewSender creates a Sender with default intervals and budget.
func NewSender(opts ...Option) *Sender {
	s := &Sender{
		attempts:      DefaultAttempts,
		offerInterval: defaultOfferInterval,
		pollInterval:  defaultPollInterval,
		log:           slog.Default(),
		now:           time.Now,
		sleep:         sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WaitConnected polls the publication until a subscriber connection exists or
// the timeout elapses, whichever is first.
func (s *Sender) WaitConnected(ctx context.Context, pub transport.Publication, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	deadline := s.now().Add(timeout)

	for !pub.IsConnected() {
		if !s.now().Before(deadline) {
			s.setConnectedGauge(false)
			return errors.WrapTransient(errors.ErrConnectionTimeout, "publish", "WaitConnected", "poll")
		}
		if err := s.sleep(ctx, s.pollInterval); err != nil {
			return errors.WrapTransient(err, "publish", "WaitConnected", "poll")
		}
	}
	s.setConnectedGauge(true)
	return nil
}

// Send offers the ordered batch until it is accepted, the budget runs out, or
// the context ends. It reports whether the batch was sent. A not-connected
// publication returns (false, nil): ensuring connectivity is the caller's
// responsibility.
func (s *Sender) Send(ctx context.Context, pub transport.Publication, buffers [][]byte) (bool, error) {
	attempts := s.attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	for {
		result := pub.Offer(buffers)
		s.countOffer(result)

		switch result {
		case transport.ResultSuccess:
			return true, nil

		case transport.ResultCongested, transport.ResultAdminPause:
			// Transient backpressure: retry the same offer without
			// consuming budget, bounded by the caller's context.
			s.log.Debug("transport backpressure, retrying offer", "result", result.String())
			if err := s.sleep(ctx, s.offerInterval); err != nil {
				return false, errors.WrapTransient(err, "publish", "Send", "backpressure wait")
			}

		case transport.ResultNotConnected:
			s.log.Warn("publication has no subscriber, batch not sent")
			return false, nil

		case transport.ResultClosed, transport.ResultError:
			return false, errors.WrapFatal(errors.ErrTransport, "publish", "Send", "offer")

		default:
			attempts--
			s.log.Warn("unrecognized offer outcome", "result", result.String(), "attempts_left", attempts)
			if attempts <= 0 {
				s.countSendFailure()
				return false, errors.WrapFatal(errors.ErrSendFailure, "publish", "Send", "offer")
			}
			if err := s.sleep(ctx, s.offerInterval); err != nil {
				return false, errors.WrapTransient(err, "publish", "Send", "retry wait")
			}
		}
	}
}

func (s *Sender) countOffer(r transport.Result) {
	if s.metrics != nil {
		s.metrics.Offers.WithLabelValues(r.String()).Inc()
	}
}

func (s *Sender) countSendFailure() {
	if s.metrics != nil {
		s.metrics.SendFailures.Inc()
	}
}

func (s *Sender) setConnectedGauge(connected bool) {
	if s.metrics == nil {
		return
	}
	if connected {
		s.metrics.TransportConnected.Set(1)
	} else {
		s.metrics.TransportConnected.Set(0)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
