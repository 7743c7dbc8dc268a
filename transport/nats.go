package transport

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/c360/telemsend/errors"
)

// natsPublication publishes each buffer to a stream-scoped subject over core
// NATS. The NATS client's own conditions map onto the Result set: a full
// reconnect buffer is congestion, draining is an administrative pause.
type natsPublication struct {
	nc      *nats.Conn
	subject string
}

func connectNATS(ctx context.Context, cfg Config) (Publication, error) {
	nc, err := nats.Connect(cfg.URI,
		nats.Name("telemsend"),
		nats.Timeout(cfg.DriverTimeout),
	)
	if err != nil {
		return nil, errors.WrapTransient(err, "transport", "connectNATS", "connect")
	}
	if err := ctx.Err(); err != nil {
		nc.Close()
		return nil, errors.WrapTransient(err, "transport", "connectNATS", "connect")
	}

	subject := fmt.Sprintf("telemsend.stream.%d", cfg.StreamID)
	cfg.Logger.Debug("nats publication ready", "url", cfg.URI, "subject", subject)
	return &natsPublication{nc: nc, subject: subject}, nil
}

func (p *natsPublication) Offer(buffers [][]byte) Result {
	if !p.nc.IsConnected() {
		if p.nc.IsClosed() {
			return ResultClosed
		}
		return ResultNotConnected
	}

	for _, b := range buffers {
		if err := p.nc.Publish(p.subject, b); err != nil {
			return mapNATSError(err)
		}
	}
	if err := p.nc.Flush(); err != nil {
		return mapNATSError(err)
	}
	return ResultSuccess
}

func mapNATSError(err error) Result {
	switch {
	case stderrors.Is(err, nats.ErrConnectionClosed):
		return ResultClosed
	case stderrors.Is(err, nats.ErrConnectionDraining):
		return ResultAdminPause
	case stderrors.Is(err, nats.ErrReconnectBufExceeded):
		return ResultCongested
	case stderrors.Is(err, nats.ErrTimeout):
		return ResultCongested
	default:
		return ResultError
	}
}

func (p *natsPublication) IsConnected() bool {
	return p.nc.IsConnected()
}

func (p *natsPublication) Close() error {
	p.nc.Close()
	return nil
}
