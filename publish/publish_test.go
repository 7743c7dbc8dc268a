package publish

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/telemsend/errors"
	"github.com/c360/telemsend/metric"
	"github.com/c360/telemsend/transport"
)

// stubPublication replays a scripted sequence of offer results; the last
// entry repeats forever.
type stubPublication struct {
	results   []transport.Result
	offers    int
	connected bool
	closed    bool
}

func (p *stubPublication) Offer(_ [][]byte) transport.Result {
	i := p.offers
	p.offers++
	if i >= len(p.results) {
		i = len(p.results) - 1
	}
	return p.results[i]
}

func (p *stubPublication) IsConnected() bool { return p.connected }

func (p *stubPublication) Close() error {
	p.closed = true
	return nil
}

// fakeClock advances its time whenever the sender sleeps.
type fakeClock struct {
	t      time.Time
	sleeps int
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps++
	c.t = c.t.Add(d)
	return nil
}

func newTestSender(clock *fakeClock, opts ...Option) *Sender {
	opts = append([]Option{WithClock(clock.now, clock.sleep)}, opts...)
	return NewSender(opts...)
}

func batch() [][]byte {
	return [][]byte{{0x01, 0x02}}
}

func TestSend_SuccessFirstOffer(t *testing.T) {
	pub := &stubPublication{results: []transport.Result{transport.ResultSuccess}}
	s := newTestSender(&fakeClock{})

	sent, err := s.Send(context.Background(), pub, batch())
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 1, pub.offers)
}

func TestSend_CongestionDoesNotConsumeBudget(t *testing.T) {
	// 25 congested offers exceed the attempt budget of 10; the send must
	// still succeed because congestion never consumes budget.
	const k = 25
	results := make([]transport.Result, 0, k+1)
	for i := 0; i < k; i++ {
		results = append(results, transport.ResultCongested)
	}
	results = append(results, transport.ResultSuccess)

	pub := &stubPublication{results: results}
	s := newTestSender(&fakeClock{})

	sent, err := s.Send(context.Background(), pub, batch())
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, k+1, pub.offers, "expected exactly K+1 offer calls")
}

func TestSend_AdminPauseRetriesLikeCongestion(t *testing.T) {
	pub := &stubPublication{results: []transport.Result{
		transport.ResultAdminPause,
		transport.ResultAdminPause,
		transport.ResultSuccess,
	}}
	s := newTestSender(&fakeClock{})

	sent, err := s.Send(context.Background(), pub, batch())
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 3, pub.offers)
}

func TestSend_NotConnectedReturnsSilently(t *testing.T) {
	pub := &stubPublication{results: []transport.Result{transport.ResultNotConnected}}
	s := newTestSender(&fakeClock{})

	sent, err := s.Send(context.Background(), pub, batch())
	require.NoError(t, err, "not-connected must not raise")
	assert.False(t, sent, "not-connected must not report success")
	assert.Equal(t, 1, pub.offers)
}

func TestSend_HardErrorSurfacesTransportError(t *testing.T) {
	for _, r := range []transport.Result{transport.ResultError, transport.ResultClosed} {
		pub := &stubPublication{results: []transport.Result{r}}
		s := newTestSender(&fakeClock{})

		sent, err := s.Send(context.Background(), pub, batch())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrTransport)
		assert.False(t, sent)
	}
}

func TestSend_UnrecognizedResultExhaustsBudget(t *testing.T) {
	pub := &stubPublication{results: []transport.Result{transport.Result(99)}}
	s := newTestSender(&fakeClock{})

	sent, err := s.Send(context.Background(), pub, batch())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSendFailure)
	assert.False(t, sent)
	assert.Equal(t, DefaultAttempts, pub.offers)
}

func TestSend_CustomAttemptBudget(t *testing.T) {
	pub := &stubPublication{results: []transport.Result{transport.Result(99)}}
	s := newTestSender(&fakeClock{}, WithAttempts(3))

	_, err := s.Send(context.Background(), pub, batch())
	require.Error(t, err)
	assert.Equal(t, 3, pub.offers)
}

func TestSend_ContextBoundsCongestionWait(t *testing.T) {
	pub := &stubPublication{results: []transport.Result{transport.ResultCongested}}
	s := NewSender() // real sleeper so the context is honored

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, err := s.Send(ctx, pub, batch())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, sent)
}

func TestSend_CountsOffersAndFailures(t *testing.T) {
	reg := metric.NewRegistry()
	pub := &stubPublication{results: []transport.Result{
		transport.ResultCongested,
		transport.ResultSuccess,
	}}
	s := newTestSender(&fakeClock{}, WithMetrics(reg.Metrics))

	sent, err := s.Send(context.Background(), pub, batch())
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestWaitConnected_SucceedsImmediately(t *testing.T) {
	pub := &stubPublication{connected: true}
	clock := &fakeClock{}
	s := newTestSender(clock)

	err := s.WaitConnected(context.Background(), pub, time.Second)
	require.NoError(t, err)
	assert.Zero(t, clock.sleeps)
}

func TestWaitConnected_TimesOutDeterministically(t *testing.T) {
	pub := &stubPublication{connected: false}
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := newTestSender(clock)

	err := s.WaitConnected(context.Background(), pub, 1000*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConnectionTimeout)
	assert.True(t, errors.IsTransient(err))
	// 10ms polls against a 1000ms deadline
	assert.Equal(t, 100, clock.sleeps)
}

func TestWaitConnected_DefaultTimeout(t *testing.T) {
	pub := &stubPublication{connected: false}
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := newTestSender(clock)

	err := s.WaitConnected(context.Background(), pub, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConnectionTimeout)
}
