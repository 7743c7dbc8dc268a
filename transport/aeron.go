package transport

import (
	"github.com/lirm/aeron-go/aeron"
	"github.com/lirm/aeron-go/aeron/atomic"

	"github.com/c360/telemsend/errors"
)

// aeronPublication adapts an Aeron publication to the Publication interface,
// mapping Aeron's negative offer codes onto the closed Result set. Aeron
// accepts one buffer per offer, so the adapter tracks the accepted prefix of
// the batch: re-offering the same batch after backpressure resumes at the
// first unaccepted buffer instead of duplicating the prefix.
type aeronPublication struct {
	client *aeron.Aeron
	pub    *aeron.Publication
	cursor batchCursor
}

// batchCursor remembers how many leading buffers of the current batch were
// already accepted. It assumes the caller re-offers the same batch until it
// reports success.
type batchCursor struct {
	accepted int
}

func (c *batchCursor) offer(n int, offerOne func(int) Result) Result {
	for i := c.accepted; i < n; i++ {
		if r := offerOne(i); r != ResultSuccess {
			c.accepted = i
			return r
		}
	}
	c.accepted = 0
	return ResultSuccess
}

func connectAeron(cfg Config) (Publication, error) {
	actx := aeron.NewContext().
		AeronDir(cfg.AeronDir).
		MediaDriverTimeout(cfg.DriverTimeout)

	client, err := aeron.Connect(actx)
	if err != nil {
		return nil, errors.WrapTransient(err, "transport", "connectAeron", "driver connect")
	}

	pub, err := client.AddPublication(cfg.URI, cfg.StreamID)
	if err != nil {
		_ = client.Close()
		return nil, errors.WrapTransient(err, "transport", "connectAeron", "add publication")
	}

	cfg.Logger.Debug("aeron publication added",
		"channel", cfg.URI, "stream", cfg.StreamID, "dir", cfg.AeronDir)
	return &aeronPublication{client: client, pub: pub}, nil
}

func (p *aeronPublication) Offer(buffers [][]byte) Result {
	return p.cursor.offer(len(buffers), func(i int) Result {
		b := buffers[i]
		buf := atomic.MakeBuffer(b, len(b))
		if ret := p.pub.Offer(buf, 0, int32(len(b)), nil); ret < 0 {
			return mapAeronCode(ret)
		}
		return ResultSuccess
	})
}

func mapAeronCode(code int64) Result {
	switch code {
	case aeron.NotConnected:
		return ResultNotConnected
	case aeron.BackPressured:
		return ResultCongested
	case aeron.AdminAction:
		return ResultAdminPause
	case aeron.PublicationClosed:
		return ResultClosed
	default:
		return ResultError
	}
}

func (p *aeronPublication) IsConnected() bool {
	return p.pub.IsConnected()
}

func (p *aeronPublication) Close() error {
	err := p.pub.Close()
	if cerr := p.client.Close(); err == nil {
		err = cerr
	}
	return err
}
