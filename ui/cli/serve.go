// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/boardlock/internal/config"
	"github.com/toeirei/boardlock/internal/core"
	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/i18n"
	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/metrics"
	"github.com/toeirei/boardlock/internal/model"
	"github.com/toeirei/boardlock/internal/mqtt"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run headless and follow the schedule",
		Long: `Checks the weekly schedule every schedule.interval and applies the active
slot to every known board until interrupted. When metrics.listen is set,
prometheus metrics are served on /metrics. When mqtt.broker is set, every
scan, dispatch and schedule event is published below mqtt.topic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withPanel(func(p *core.Panel) error {
				return serve(ctx, p)
			})
		},
	}
}

// connectMQTT opens the broker connection for the event sink. Tests
// replace it.
var connectMQTT = func(cfg config.MQTTConfig) (mqtt.Client, error) { return mqtt.Connect(cfg) }

func serve(ctx context.Context, p *core.Panel) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	// The sink outlives ctx so the batches still running at shutdown get
	// their results published.
	sinkCtx, stopSink := context.WithCancel(context.WithoutCancel(ctx))
	defer stopSink()

	p.Subscribe(events.ObserverFunc(logEvent))

	if addr := appConfig.Metrics.Listen; addr != "" {
		collector := metrics.New()
		p.Subscribe(collector)

		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Errorf("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logging.Infof("%s", i18n.T("serve.metrics", addr))
	}

	if cfg := appConfig.MQTT; cfg.Broker != "" {
		client, err := connectMQTT(cfg)
		if err != nil {
			return err
		}
		sink := mqtt.NewSink(client, cfg.Topic)
		p.Subscribe(sink)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Run(sinkCtx)
		}()
		logging.Infof("%s", i18n.T("serve.mqtt", cfg.Broker))
	}

	logging.Infof("%s", i18n.T("serve.started", appConfig.Schedule.Interval))
	p.RunSchedule(ctx, appConfig.Schedule.Interval)

	logging.Infof("%s", i18n.T("serve.stopping"))
	p.Wait()
	stopSink()
	return nil
}

// logEvent reports batch outcomes and schedule firings on the log.
func logEvent(e events.Event) {
	switch e.Kind {
	case events.KindTickFired:
		logging.Infof("%s", i18n.T("schedule.tick_fired", actionLabel(e.Action), model.Clock(e.Time)))
	case events.KindDispatchResult:
		if e.Error != "" {
			logging.Warnf("%s", i18n.T("dispatch.failed", e.Address, e.Error))
		}
	case events.KindBatchFinished:
		logging.Infof("%s", i18n.T("dispatch.finished", actionLabel(e.Action), e.Count, e.Total-e.Count))
	case events.KindScanFinished:
		logging.Infof("%s", i18n.T("scan.finished", e.Count, e.Probed, e.Total))
	}
}
