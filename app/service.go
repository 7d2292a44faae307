// Package app wires the configuration into a running controller service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/pvcharge/api"
	"github.com/kilianp07/pvcharge/config"
	"github.com/kilianp07/pvcharge/core/control"
	"github.com/kilianp07/pvcharge/core/history"
	coremetrics "github.com/kilianp07/pvcharge/core/metrics"
	"github.com/kilianp07/pvcharge/core/statusstore"
	"github.com/kilianp07/pvcharge/infra/goe"
	"github.com/kilianp07/pvcharge/infra/logger"
	"github.com/kilianp07/pvcharge/infra/metrics"
	"github.com/kilianp07/pvcharge/infra/mqtt"
	"github.com/kilianp07/pvcharge/infra/viessmann"
	"github.com/kilianp07/pvcharge/internal/eventbus"
)

// Service orchestrates the control loop, the webservice and the telemetry
// fan-out.
type Service struct {
	cfg     *config.Config
	cfgPath string

	controller *control.Controller
	history    history.Store
	status     *statusstore.MemoryStore
	bus        *eventbus.Bus
	sink       coremetrics.Sink
	publisher  *mqtt.Publisher
	fileWriter *logger.DailyFileWriter
	log        logger.Logger
}

// New creates a Service from the configuration. cfgPath is kept so the
// enabled flag can be re-read between cycles and toggled over the API.
func New(cfg *config.Config, cfgPath string) (*Service, error) {
	fw, err := logger.NewDailyFileWriter(cfg.Logging.Dir)
	if err != nil {
		return nil, err
	}
	logg := logger.NewWithWriter("service", fw)

	charger := goe.NewClient(cfg.Charger)
	pv, err := viessmann.NewClient(cfg.Viessmann)
	if err != nil {
		return nil, fmt.Errorf("viessmann client: %w", err)
	}
	engine := control.NewEngine(cfg.Control)
	window := control.NewWindow(cfg.Control.WindowStart, cfg.Control.WindowEnd)
	controller := control.NewController(pv, charger, engine, window, logger.NewWithWriter("controller", fw))

	hist, err := history.New(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var publisher *mqtt.Publisher
	if cfg.MQTT.Enabled() {
		publisher, err = mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	return &Service{
		cfg:        cfg,
		cfgPath:    cfgPath,
		controller: controller,
		history:    hist,
		status:     statusstore.NewMemoryStore(),
		bus:        eventbus.New(),
		sink:       sink,
		publisher:  publisher,
		fileWriter: fw,
		log:        logg,
	}, nil
}

// RunCycle executes a single control cycle and records its outcome. Used by
// both the periodic loop and the one-shot check command.
func (s *Service) RunCycle(ctx context.Context) error {
	res, err := s.controller.RunCycle(ctx, time.Now())
	if err != nil {
		s.log.Errorf("control cycle: %v", err)
	}
	if hErr := s.history.Append(ctx, res); hErr != nil {
		s.log.Warnf("history append: %v", hErr)
	}
	s.status.Set(res)
	s.bus.Publish(res)
	if mErr := s.sink.RecordCycle(cycleEvent(res)); mErr != nil {
		s.log.Warnf("metrics sink: %v", mErr)
	}
	return err
}

// Run starts the webservice and the periodic control loop, blocking until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.publisher != nil {
		sub := s.bus.Subscribe()
		go func() {
			for res := range sub {
				if err := s.publisher.PublishCycle(res); err != nil {
					s.log.Warnf("mqtt publish: %v", err)
				}
			}
		}()
	}

	srv := &http.Server{
		Addr: s.cfg.API.Addr,
		Handler: api.NewHandler(api.Options{
			LogDir:     s.cfg.Logging.Dir,
			ConfigPath: s.cfgPath,
			StaticDir:  s.cfg.API.StaticDir,
			AuthToken:  s.cfg.API.AuthToken,
			Status:     s.status,
			History:    s.history,
			Logger:     logger.NewWithWriter("api", s.fileWriter),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		s.log.Infof("webservice listening on %s", s.cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("webservice: %v", err)
		}
	}()
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	ticker := time.NewTicker(s.cfg.Control.Interval())
	defer ticker.Stop()
	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.log.Warnf("webservice shutdown: %v", err)
			}
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one cycle if the enabled flag is still set. The flag is re-read
// from the config file so the API toggle takes effect without a restart.
func (s *Service) tick(ctx context.Context) {
	if !s.enabled() {
		s.log.Infof("controller disabled, skipping cycle")
		return
	}
	_ = s.RunCycle(ctx)
}

func (s *Service) enabled() bool {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		s.log.Warnf("reload config: %v, keeping previous enabled=%v", err, s.cfg.Enabled)
		return s.cfg.Enabled
	}
	s.cfg.Enabled = cfg.Enabled
	return cfg.Enabled
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Close()
	}
	err := s.history.Close()
	if fErr := s.fileWriter.Close(); err == nil {
		err = fErr
	}
	return err
}

func cycleEvent(res control.CycleResult) coremetrics.CycleEvent {
	return coremetrics.CycleEvent{
		Time:          res.Time,
		SolarW:        res.PV.SolarPower,
		HouseholdW:    res.PV.Household,
		SurplusW:      res.Decision.SurplusW,
		ChargerPowerW: res.Status.ChargingPower(),
		StateOfCharge: res.PV.StateOfCharge,
		Action:        res.Decision.Action,
		Amps:          res.Decision.Amps,
		Phases:        res.Decision.Phases,
		Applied:       res.Applied,
		Error:         res.Error,
	}
}
