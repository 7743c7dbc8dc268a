// Package idclock provides the timestamp and correlation-id capability
// consumed by the message encoder.
//
// The production implementation is backed by a snowflake generator: each id
// combines a timestamp, the configured block (node) id, and an intra-tick
// sequence counter, so sequential ids are strictly increasing within one
// process and never reused. Tests inject a deterministic Source instead.
package idclock

import (
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/c360/telemsend/errors"
)

// Source supplies wall-clock timestamps and correlation ids for encoding.
type Source interface {
	// Now returns the current wall-clock time in nanoseconds since the
	// Unix epoch.
	Now() int64
	// NextID returns a process-unique correlation id. Sequential calls
	// yield a strictly increasing sequence.
	NextID() uint64
}

// Snowflake is the production Source, namespaced by a configured block id.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a Source for the given block id. The block id
// identifies this sending instance and must fit the generator's node range.
func NewSnowflake(blockID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(blockID)
	if err != nil {
		return nil, errors.WrapInvalid(err, "idclock", "NewSnowflake", "block id")
	}
	return &Snowflake{node: node}, nil
}

// Now implements Source.
func (s *Snowflake) Now() int64 {
	return time.Now().UnixNano()
}

// NextID implements Source.
func (s *Snowflake) NextID() uint64 {
	return uint64(s.node.Generate().Int64())
}
