// SPDX-License-Identifier: GPL-3.0-or-later

package vantage

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/go-vantage/vantage/controllers"
	"github.com/go-vantage/vantage/internal/aci"
	"github.com/go-vantage/vantage/internal/events"
	"github.com/go-vantage/vantage/internal/hc"
	"github.com/go-vantage/vantage/internal/transport"
	"github.com/go-vantage/vantage/verror"
	"github.com/go-vantage/vantage/vlog"
)

// Session is a client connection to one Vantage InFusion controller: an ACI
// config channel, a Host Command channel, the event stream multiplexed
// over it, and one controller per supported object kind (spec.md §2
// component I).
//
// The embedded [*controllers.Set] exposes one named field per kind —
// Loads, RGBLoads, Buttons, Blinds, Thermostats, Tasks, GMems,
// OmniSensors, LightSensors, AnemoSensors — so a caller writes
// session.Loads.Get(ctx, vid) directly.
//
// Construct with [NewSession]; call [Session.Open] before using any
// controller or the Events field; call [Session.Close] when done.
type Session struct {
	cfg    *SessionConfig
	logger vlog.SLogger

	*controllers.Set

	// Events is the session's event dispatcher (spec.md §4.F), valid
	// after [Session.Open] returns successfully.
	Events *events.Dispatcher

	aci *aci.Client
	hc  *hc.Client

	runCancel context.CancelFunc
	closeOnce sync.Once
}

// NewSession returns a [*Session] configured for host, applying opts over
// the defaults. The session does nothing network-visible until
// [Session.Open] is called.
func NewSession(host string, opts ...Option) *Session {
	cfg := defaultSessionConfig(host)
	for _, opt := range opts {
		opt(cfg)
	}
	return &Session{cfg: cfg, logger: cfg.Logger}
}

func (s *Session) dialConfig(tlsPort, plainPort int) transport.DialConfig {
	return transport.DialConfig{
		Host:      s.cfg.Host,
		TLSPort:   tlsPort,
		PlainPort: plainPort,
		TLS:       s.cfg.TLS,
		Verify:    s.cfg.SSL.verifyMode(),
		Timeout:   s.cfg.Timeout,
	}
}

// Open dials both channels, logs in if credentials were supplied, starts
// the Host Command reconnect loop, and enumerates+fetches initial state
// for every controller (spec.md §8 scenario 1). A failed login is
// returned with [KindAuth] and is not retried (scenario 4).
func (s *Session) Open(ctx context.Context) error {
	if s.runCancel != nil {
		return verror.New(verror.KindProtocol, "vantage.Session.Open", errors.New("vantage: session already open"))
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	s.runCancel = runCancel

	tnopCfg := transport.NewConfig()
	tnopCfg.ErrClassifier = s.cfg.ErrClassifier

	aciConn, err := transport.Dial(ctx, s.dialConfig(s.cfg.ACIPort, s.cfg.ACIPlainPort), tnopCfg, s.logger)
	if err != nil {
		runCancel()
		return err
	}

	aciClient := aci.NewClient(aciConn, s.logger, s.cfg.ErrClassifier, time.Now)
	if s.cfg.Username != "" {
		if err := aciClient.Login(ctx, s.cfg.Username, s.cfg.Password); err != nil {
			aciClient.Close()
			runCancel()
			return err
		}
	} else {
		// No eager login: the ACI client still records these credentials
		// so the first auth-required response triggers one lazy
		// login+retry (spec.md §4.C).
		aciClient.SetCredentials(s.cfg.Username, s.cfg.Password)
	}
	s.aci = aciClient

	// dispatcher is captured by the hc.Client's OnStatus/OnEllog/
	// OnDisconnected hooks before it exists: hc.NewClient needs those
	// hooks at construction, but events.NewDispatcher needs the
	// *hc.Client as its invoker. The closures below only read dispatcher
	// once an event has actually arrived, by which point it has been
	// assigned.
	var dispatcher *events.Dispatcher
	hcClient := hc.NewClient(hc.ClientConfig{
		Dial: func(ctx context.Context) (net.Conn, error) {
			return transport.Dial(ctx, s.dialConfig(s.cfg.HCPort, s.cfg.HCPlainPort), tnopCfg, s.logger)
		},
		Login: func(ctx context.Context, conn net.Conn) error {
			if s.cfg.Username == "" {
				return nil
			}
			return hc.PerformLogin(ctx, conn, s.cfg.Username, s.cfg.Password)
		},
		OnResync: s.onResync,
		OnDisconnected: func() {
			if dispatcher != nil {
				dispatcher.Suspend()
			}
		},
		OnStatus: func(line string) {
			if dispatcher != nil {
				dispatcher.HandleStatusLine(line)
			}
		},
		OnEllog: func(line string) {
			if dispatcher != nil {
				dispatcher.HandleEllogLine(line)
			}
		},
		Logger:        s.logger,
		ErrClassifier: s.cfg.ErrClassifier,
		Timeout:       s.cfg.Timeout,
	})
	dispatcher = events.NewDispatcher(hcClient, s.logger)

	s.hc = hcClient
	s.Events = dispatcher
	s.Set = controllers.NewSet(controllers.Deps{
		ACI:         aciClient,
		HC:          hcClient,
		Events:      dispatcher,
		Logger:      s.logger,
		FanOutLimit: s.cfg.FanOutLimit,
	})

	go hcClient.Run(runCtx)

	if err := hcClient.WaitReady(ctx); err != nil {
		s.Close()
		return err
	}

	if err := s.Set.InitializeAll(ctx, true); err != nil {
		s.Close()
		return err
	}

	return nil
}

// onResync re-installs every live subscription and re-runs every
// controller's state-refresh phase (spec.md §4.H "On reconnect"). Wired as
// the Host Command transport's resync hook; fires once after the first
// connect and again after every reconnect.
func (s *Session) onResync(ctx context.Context) {
	s.logger.Info("sessionResync")
	s.Events.Resync(ctx)
	if err := s.Set.ResyncAll(ctx); err != nil {
		s.logger.Warn("sessionResyncFailed", slog.String("error", err.Error()))
	}
}

// Close cancels the Host Command reconnect loop and closes both channel
// sockets (spec.md §5 "Cancellation"). A request in flight on the Host
// Command channel observes this as [KindDisconnected]; a request in flight
// whose own ctx is cancelled observes [KindCancelled] directly from that
// ctx instead. Safe to call more than once; only the first call does work.
func (s *Session) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		if s.hc != nil {
			closeErr = s.hc.Close()
		}
		if s.runCancel != nil {
			s.runCancel()
		}
		if s.aci != nil {
			if err := s.aci.Close(); err != nil && closeErr == nil {
				closeErr = err
			}
		}
	})
	return closeErr
}
