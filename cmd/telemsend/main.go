// Package main implements the entry point for telemsend, a one-shot typed
// telemetry publisher for instrument-control systems. It parses ad-hoc
// key=value tokens into typed values, encodes them as Event or Tensor wire
// messages, and offers the batch to a UDP pub/sub transport.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/c360/telemsend/errors"
	"github.com/c360/telemsend/idclock"
	"github.com/c360/telemsend/metric"
	"github.com/c360/telemsend/parse"
	"github.com/c360/telemsend/publish"
	"github.com/c360/telemsend/resource"
	"github.com/c360/telemsend/transport"
	"github.com/c360/telemsend/wire"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("send failed", "error", err, "class", errors.Classify(err).String())
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	if cfg.ShowHelp {
		printDetailedHelp()
		return nil
	}
	if cfg.ShowVersion {
		fmt.Printf("telemsend %s (built %s)\n", Version, BuildTime)
		return nil
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// Arguments and tokens are resolved before any network activity, so a
	// bad invocation has no partial network side effects.
	if cfg.Tag == "" {
		return errors.WrapInvalid(errors.ErrMissingArgument, "main", "run", "--tag")
	}
	if cfg.URI == "" {
		return errors.WrapInvalid(errors.ErrMissingArgument, "main", "run", "--uri")
	}

	pairs, err := parse.ParsePairs(flag.Args())
	if err != nil {
		return err
	}

	src, err := idclock.NewSnowflake(int64(cfg.BlockID))
	if err != nil {
		return err
	}

	registry := metric.NewRegistry()
	ctx := context.Background()

	buffers, err := encodeBatch(ctx, cfg, pairs, src, registry.Metrics)
	if err != nil {
		return err
	}
	logger.Debug("batch encoded", "messages", len(buffers), "tag", cfg.Tag)

	pub, err := transport.Connect(ctx, transport.Config{
		URI:           cfg.URI,
		StreamID:      int32(cfg.StreamID),
		AeronDir:      cfg.AeronDir,
		DriverTimeout: cfg.ConnectTimeout,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			logger.Warn("publication close failed", "error", cerr)
		}
	}()

	sender := publish.NewSender(
		publish.WithLogger(logger),
		publish.WithMetrics(registry.Metrics),
	)

	if err := sender.WaitConnected(ctx, pub, cfg.ConnectTimeout); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, cfg.SendTimeout)
	defer cancel()

	sent, err := sender.Send(sendCtx, pub, buffers)
	if err != nil {
		return err
	}
	if !sent {
		return errors.Wrap(errors.ErrTransport, "main", "run", "publication lost its subscriber")
	}

	registry.LogSummary(logger)
	logger.Info("batch published",
		"messages", len(buffers), "tag", cfg.Tag, "stream", cfg.StreamID)
	return nil
}

// encodeBatch turns the parsed pairs into wire buffers. The first encode
// failure aborts the whole run; nothing is published from a partial batch.
func encodeBatch(ctx context.Context, cfg *CLIConfig, pairs []parse.Pair, src idclock.Source, m *metric.Metrics) ([][]byte, error) {
	enc := wire.NewEncoder(src, resource.NewClient())

	if len(pairs) == 0 {
		// A tag with no pairs is still an event: a pure notification.
		pairs = []parse.Pair{{Key: "", Value: parse.Null()}}
	}

	buffers := make([][]byte, 0, len(pairs))
	for _, p := range pairs {
		var buf []byte
		var err error
		if cfg.Tensor {
			buf, err = enc.EncodeTensor(ctx, cfg.Tag, p.Value)
		} else {
			buf, err = enc.EncodeEvent(ctx, cfg.Tag, p.Key, p.Value)
		}
		if err != nil {
			return nil, err
		}

		schema := "event"
		if wire.Schema(buf) == wire.SchemaTensor {
			schema = "tensor"
		}
		m.MessagesEncoded.WithLabelValues(schema).Inc()
		buffers = append(buffers, buf)
	}
	return buffers, nil
}
