package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	AeronDir       string
	URI            string
	StreamID       int
	Tag            string
	Tensor         bool
	BlockID        int
	ConnectTimeout time.Duration
	SendTimeout    time.Duration
	LogLevel       string
	LogFormat      string
	ShowVersion    bool
	ShowHelp       bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.AeronDir, "aerondir",
		getEnv("TELEMSEND_DIR", ""),
		"Aeron media driver directory (env: TELEMSEND_DIR)")

	flag.StringVar(&cfg.URI, "uri",
		getEnv("TELEMSEND_URI", "aeron:udp?endpoint=localhost:40123"),
		"Destination channel URI, aeron:* or nats:// (env: TELEMSEND_URI)")

	flag.IntVar(&cfg.StreamID, "stream",
		getEnvInt("TELEMSEND_STREAM", 10),
		"Destination stream id (env: TELEMSEND_STREAM)")

	flag.StringVar(&cfg.Tag, "tag", "", "Message tag (required)")

	flag.BoolVar(&cfg.Tensor, "tensor", false,
		"Encode values as Tensor messages instead of Events")

	flag.IntVar(&cfg.BlockID, "block",
		getEnvInt("TELEMSEND_BLOCK", 1),
		"Block id namespacing the correlation-id generator (env: TELEMSEND_BLOCK)")

	flag.DurationVar(&cfg.ConnectTimeout, "timeout",
		getEnvDuration("TELEMSEND_TIMEOUT", time.Second),
		"Deadline for the subscriber connection wait (env: TELEMSEND_TIMEOUT)")

	flag.DurationVar(&cfg.SendTimeout, "send-timeout",
		getEnvDuration("TELEMSEND_SEND_TIMEOUT", 30*time.Second),
		"Overall deadline for the publish loop, including backpressure waits (env: TELEMSEND_SEND_TIMEOUT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("TELEMSEND_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: TELEMSEND_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("TELEMSEND_LOG_FORMAT", "text"),
		"Log format: json, text (env: TELEMSEND_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func printDetailedHelp() {
	fmt.Fprintf(os.Stderr, `telemsend - one-shot typed telemetry publisher

Usage:
  telemsend --tag <tag> [flags] [key[=value] ...]

Each positional token is a key with an optional typed value. Value types are
inferred: quotes force text, true/false are booleans, integers may carry a
width suffix (b, h, l, ll, u, ub, uh, ul, ull), 0x prefixes hex, and file,
http, https or ftp URIs are loaded and sent as tensors. A bare key sends a
null value.

Examples:
  telemsend --tag camera.exposure state=active gain=2.5 frames=128u
  telemsend --tag camera.frame --tensor img=file:///data/frame.fits

Flags:
`)
	flag.PrintDefaults()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
