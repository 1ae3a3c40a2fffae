// Command owlprobe dials each configured GRAIL/OWL endpoint, performs a
// handshake, and exchanges one representative message per protocol role,
// reporting success or failure for each — a smoke test for a deployment's
// sensor-aggregator, aggregator-solver, and world-model links.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/OwlPlatform/owl-common/config"
	"github.com/OwlPlatform/owl-common/metric"
	"github.com/OwlPlatform/owl-common/pkg/worker"
	"github.com/OwlPlatform/owl-common/proto/aggsolver"
	wmclient "github.com/OwlPlatform/owl-common/proto/worldmodel/client"
	"github.com/OwlPlatform/owl-common/proto/sensoragg"
	"github.com/OwlPlatform/owl-common/transport/framer"
	"github.com/OwlPlatform/owl-common/transport/socket"
	"github.com/OwlPlatform/owl-common/wire/codec"
	"github.com/OwlPlatform/owl-common/wire/types"
)

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
		slog.Error("owlprobe failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cli := parseFlags()
	if err := validateFlags(cli); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if cli.ShowVersion {
		fmt.Printf("owlprobe version %s (%s)\n", Version, BuildTime)
		return nil
	}
	if cli.ShowHelp {
		printHelp()
		return nil
	}

	logger := setupLogger(cli.LogLevel, cli.LogFormat).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	loader := config.NewLoader()
	loader.AddLayer(cli.ConfigPath)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry := metric.NewMetricsRegistry()
	metrics := registry.CoreMetrics()
	if cfg.Metrics.Port != 0 {
		metricsServer := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		go func() {
			if err := metricsServer.Start(); err != nil {
				slog.Warn("metrics server stopped", "error", err)
			}
		}()
		defer metricsServer.Stop()
		slog.Info("metrics endpoint listening", "address", metricsServer.Address())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return probeAll(ctx, cfg, cli, metrics)
}

func probeAll(ctx context.Context, cfg *config.Config, cli *CLIConfig, metrics *metric.Metrics) error {
	g, gctx := errgroup.WithContext(ctx)

	if (cli.Role == "all" || cli.Role == "sensor") && cfg.SensorAggregator.ListenAddress != "" {
		g.Go(func() error {
			return probeSensorAggregator(gctx, cfg.SensorAggregator.ListenAddress, cli.Timeout, cfg.Retry, metrics)
		})
	}
	if (cli.Role == "all" || cli.Role == "solver") && cfg.AggregatorSolver.DialAddress != "" {
		g.Go(func() error {
			return probeAggregatorSolver(gctx, cfg.AggregatorSolver.DialAddress, cli.Timeout, cfg.Retry, metrics)
		})
	}
	if (cli.Role == "all" || cli.Role == "worldmodel") && cfg.WorldModel.ClientListenAddress != "" {
		g.Go(func() error {
			return probeWorldModelClient(gctx, cfg.WorldModel.ClientListenAddress, cli.Timeout, cfg.Retry, metrics)
		})
	}

	return g.Wait()
}

func dial(ctx context.Context, address string, cfg config.RetryConfig) (*socket.Socket, error) {
	dialer := socket.NewDialer(cfg.Resolve())
	return dialer.Dial(ctx, address)
}

func probeSensorAggregator(ctx context.Context, address string, timeout time.Duration, retryCfg config.RetryConfig, metrics *metric.Metrics) error {
	log := slog.With("role", "sensor-aggregator", "address", address)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sock, err := dial(ctx, address, retryCfg)
	if err != nil {
		metrics.RecordHandshakeFailure("sensor-aggregator")
		return fmt.Errorf("sensor-aggregator dial: %w", err)
	}
	defer sock.Close()
	metrics.RecordConnectionOpened("sensor-aggregator")
	defer metrics.RecordConnectionClosed("sensor-aggregator", "probe-complete")

	if err := sock.Send(sensoragg.EncodeHandshake()); err != nil {
		return fmt.Errorf("sensor-aggregator handshake send: %w", err)
	}

	f := framer.New(sock)
	sample := types.Sample{
		Phy:         types.PhyTransmitter,
		TxID:        types.NewUint128FromUint64(0xfeed),
		RxID:        types.NewUint128FromUint64(0xface),
		RxTimestamp: time.Now().UnixMilli(),
		RSS:         -42.0,
		SenseData:   []byte{1, 2, 3},
	}
	if err := sock.Send(sensoragg.EncodeSample(sample)); err != nil {
		return fmt.Errorf("sensor-aggregator sample send: %w", err)
	}
	metrics.RecordFrameEncoded("sensor-aggregator", "sample")

	frame, err := f.Next(ctx)
	if err != nil {
		return fmt.Errorf("sensor-aggregator read: %w", err)
	}
	if frame == nil {
		log.Warn("no reply within timeout; probe is send-only for this protocol, treating as success")
		return nil
	}
	log.Info("received unexpected reply", "bytes", len(frame))
	return nil
}

func probeAggregatorSolver(ctx context.Context, address string, timeout time.Duration, retryCfg config.RetryConfig, metrics *metric.Metrics) error {
	log := slog.With("role", "aggregator-solver", "address", address)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sock, err := dial(ctx, address, retryCfg)
	if err != nil {
		metrics.RecordHandshakeFailure("aggregator-solver")
		return fmt.Errorf("aggregator-solver dial: %w", err)
	}
	defer sock.Close()
	metrics.RecordConnectionOpened("aggregator-solver")
	defer metrics.RecordConnectionClosed("aggregator-solver", "probe-complete")

	if err := sock.Send(aggsolver.EncodeHandshake()); err != nil {
		return fmt.Errorf("aggregator-solver handshake send: %w", err)
	}

	sub := types.Subscription{
		{Phy: types.PhyFixed, Txers: []types.TxerRule{{BaseID: types.NewUint128FromUint64(0), Mask: types.NewUint128FromUint64(0)}}, UpdateInterval: 1000},
	}
	if err := sock.Send(aggsolver.EncodeSubscription(aggsolver.SubscriptionRequest, sub)); err != nil {
		return fmt.Errorf("aggregator-solver subscription send: %w", err)
	}
	metrics.RecordFrameEncoded("aggregator-solver", "subscription_request")

	done := make(chan struct{})
	var closeDone sync.Once
	dispatcher := worker.NewFrameDispatcher(2, 16, func(_ context.Context, frame []byte) error {
		kind, ok := aggsolver.DecodeKind(frame)
		if !ok {
			metrics.RecordDecodeFailure("aggregator-solver", "unknown")
			return nil
		}
		metrics.RecordFrameDecoded("aggregator-solver", fmt.Sprintf("%d", kind))
		log.Info("received reply", "message_id", kind)
		if kind == aggsolver.SubscriptionResponse {
			closeDone.Do(func() { close(done) })
		}
		return nil
	})
	if err := dispatcher.Start(ctx); err != nil {
		return fmt.Errorf("aggregator-solver dispatch pool start: %w", err)
	}
	defer dispatcher.Stop(time.Second)

	f := framer.New(sock)
	limiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		frame, err := f.Next(ctx)
		if err != nil {
			return fmt.Errorf("aggregator-solver read: %w", err)
		}
		if frame == nil {
			return nil
		}
		if err := dispatcher.Submit(frame); err != nil {
			metrics.RecordDecodeFailure("aggregator-solver", "dispatch_queue_full")
		}
		select {
		case <-done:
			return nil
		default:
		}
	}
}

func probeWorldModelClient(ctx context.Context, address string, timeout time.Duration, retryCfg config.RetryConfig, metrics *metric.Metrics) error {
	log := slog.With("role", "world-model-client", "address", address)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sock, err := dial(ctx, address, retryCfg)
	if err != nil {
		metrics.RecordHandshakeFailure("world-model-client")
		return fmt.Errorf("world-model-client dial: %w", err)
	}
	defer sock.Close()
	metrics.RecordConnectionOpened("world-model-client")
	defer metrics.RecordConnectionClosed("world-model-client", "probe-complete")

	if err := sock.Send(wmclient.EncodeHandshake()); err != nil {
		return fmt.Errorf("world-model-client handshake send: %w", err)
	}

	req := wmclient.Request{Ticket: 1, ObjectURI: "room\\..*", Attributes: []string{"occupied"}}
	if err := sock.Send(wmclient.EncodeRequest(wmclient.SnapshotRequest, req)); err != nil {
		return fmt.Errorf("world-model-client snapshot request send: %w", err)
	}
	metrics.RecordFrameEncoded("world-model-client", "snapshot_request")

	f := framer.New(sock)
	frame, err := f.Next(ctx)
	if err != nil {
		return fmt.Errorf("world-model-client read: %w", err)
	}
	if frame == nil {
		log.Warn("no reply within timeout")
		return nil
	}
	_, header := codec.ParseFrameHeader(frame)
	if !header.LengthOK {
		metrics.RecordDecodeFailure("world-model-client", "length_mismatch")
		return fmt.Errorf("world-model-client: malformed reply frame")
	}
	log.Info("received reply", "bytes", len(frame))
	return nil
}
