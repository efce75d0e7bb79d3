// Command artdmx bridges Art-Net or sACN lighting data onto a DMX512 output.
// Frames arrive whenever the controller sends them; the output repeats the
// last frame at a fixed cadence so fixtures never lose their levels.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/artnet"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/bridge"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/buffer"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/config"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/dmx"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/sacn"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/web"
)

// receiver is what both inbound protocols provide.
type receiver interface {
	Packets() uint64
	Close() error
}

func main() {
	var (
		configPath = pflag.StringP("config", "c", "artdmx.yaml", "path to the configuration file")
		debug      = pflag.Bool("debug", false, "log at debug level")
	)
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "artdmx",
	})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("startup failed", "err", err)
	}
}

func run(configPath string, logger *log.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store := config.NewStore(configPath, cfg)
	logger.Info("configuration loaded",
		"protocol", cfg.Protocol,
		"universe", cfg.Universe,
		"channels", cfg.Channels,
		"output", cfg.Output)

	out, period, err := buildOutput(cfg, logger)
	if err != nil {
		return err
	}
	if err := out.Begin(); err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer out.Close()

	pair := buffer.NewPair()
	handler := bridge.NewHandler(pair, func() uint16 { return store.Get().Universe }, logger)

	var rx receiver
	switch cfg.Protocol {
	case config.ProtocolSACN:
		r := sacn.NewReceiver(handler.OnFrame, logger)
		if err := r.Start(cfg.Listen, cfg.Universe); err != nil {
			return fmt.Errorf("start sACN receiver: %w", err)
		}
		rx = r
	default:
		r := artnet.NewReceiver(handler.OnFrame, logger)
		if err := r.Start(cfg.Listen); err != nil {
			return fmt.Errorf("start Art-Net receiver: %w", err)
		}
		rx = r
	}
	defer rx.Close()

	sched := bridge.NewScheduler(pair, out, period,
		func() int { return store.Get().Channels }, logger)

	if cfg.HTTP != "" {
		srv := web.NewServer(store, func() web.Status {
			return web.Status{
				Frames:          pair.Frames(),
				Drops:           pair.Drops(),
				ReceivedPackets: rx.Packets(),
				ReceiveFPS:      handler.FramesPerSecond(),
				SendPPS:         out.PacketsPerSecond(),
				Jitter:          sched.Jitter(),
			}
		}, logger)
		if err := srv.Start(cfg.HTTP); err != nil {
			return fmt.Errorf("start http server: %w", err)
		}
		defer srv.Close()
		if port := httpPort(cfg.HTTP); port > 0 {
			web.Announce(cfg.Hostname, port, logger)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("sending DMX", "period", period)
	sched.Run(ctx)
	logger.Info("shutting down",
		"frames", pair.Frames(),
		"drops", pair.Drops(),
		"packets", rx.Packets())
	return nil
}

// buildOutput assembles the configured encoder. The UART output paces itself
// with the configured inter-frame delay; the sample stream runs at the fixed
// frame period its sample rate dictates.
func buildOutput(cfg config.Config, logger *log.Logger) (dmx.Output, time.Duration, error) {
	switch cfg.Output {
	case config.OutputStream:
		var sinks dmx.MultiSink
		if cfg.Device != "" {
			f, err := os.OpenFile(cfg.Device, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				return nil, 0, fmt.Errorf("open stream device: %w", err)
			}
			sinks = append(sinks, dmx.WriterSink{W: f})
		}
		if cfg.Monitor {
			m, err := dmx.NewMonitorSink()
			if err != nil {
				return nil, 0, fmt.Errorf("open audio monitor: %w", err)
			}
			sinks = append(sinks, m)
		}
		if cfg.Capture != "" {
			c, err := dmx.NewCaptureSink(cfg.Capture)
			if err != nil {
				return nil, 0, fmt.Errorf("open capture file: %w", err)
			}
			sinks = append(sinks, c)
		}
		if len(sinks) == 0 {
			return nil, 0, fmt.Errorf("stream output needs a device, monitor or capture target")
		}
		return dmx.NewStream(sinks, cfg.SafeTiming, logger), dmx.FramePeriod, nil
	default:
		var brk dmx.BreakStrategy
		if cfg.Break == config.BreakGPIO {
			g, err := dmx.NewGPIOBreak(cfg.GPIOChip, cfg.GPIOLine)
			if err != nil {
				return nil, 0, fmt.Errorf("request break line: %w", err)
			}
			brk = g
		}
		period := time.Duration(cfg.Delay) * time.Millisecond
		return dmx.NewUART(cfg.Device, brk, logger), period, nil
	}
}

func httpPort(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}
