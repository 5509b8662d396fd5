// SPDX-License-Identifier: GPL-3.0-or-later

package vantage

import (
	"time"

	"github.com/go-vantage/vantage/controllers"
	"github.com/go-vantage/vantage/internal/transport"
	"github.com/go-vantage/vantage/verror"
	"github.com/go-vantage/vantage/vlog"
)

// SSLMode controls TLS peer-certificate verification for both channels.
// Named the way spec.md §4.A names it ("strict"/"hostname-only"/"none");
// maps directly onto [transport.VerifyMode].
type SSLMode int

const (
	// SSLNone disables peer-certificate verification. Matches the
	// controller's self-signed certificate by default (spec.md §4.A).
	SSLNone SSLMode = iota

	// SSLHostnameOnly verifies the certificate's hostname but not its
	// chain of trust.
	SSLHostnameOnly

	// SSLStrict performs full chain-of-trust and hostname verification.
	SSLStrict
)

func (m SSLMode) verifyMode() transport.VerifyMode {
	switch m {
	case SSLStrict:
		return transport.VerifyStrict
	case SSLHostnameOnly:
		return transport.VerifyHostnameOnly
	default:
		return transport.VerifyNone
	}
}

// Default ports (spec.md §6): TLS config/command ports, with plain-TCP
// fallback ports when TLS is disabled.
const (
	DefaultACITLSPort   = 2010
	DefaultACIPlainPort = 2001
	DefaultHCTLSPort    = 3010
	DefaultHCPlainPort  = 3001
)

// DefaultTimeout bounds a single request/response exchange on either
// channel, and the initial dial+login+enumerate sequence in [Session.Open].
const DefaultTimeout = 5 * time.Second

// SessionConfig holds a [Session]'s configuration. Built by [NewSession]
// from its host argument and [Option]s; all fields have sensible defaults
// following the root-Config-with-defaults pattern `nop.NewConfig` uses.
type SessionConfig struct {
	Host string

	Username, Password string

	TLS                   bool
	SSL                   SSLMode
	ACIPort, ACIPlainPort int
	HCPort, HCPlainPort   int

	Timeout     time.Duration
	FanOutLimit int

	Logger        vlog.SLogger
	ErrClassifier verror.ErrClassifier
}

func defaultSessionConfig(host string) *SessionConfig {
	return &SessionConfig{
		Host:          host,
		TLS:           true,
		SSL:           SSLNone,
		ACIPort:       DefaultACITLSPort,
		ACIPlainPort:  DefaultACIPlainPort,
		HCPort:        DefaultHCTLSPort,
		HCPlainPort:   DefaultHCPlainPort,
		Timeout:       DefaultTimeout,
		FanOutLimit:   controllers.DefaultFanOutLimit,
		Logger:        vlog.DefaultSLogger(),
		ErrClassifier: verror.DefaultErrClassifier,
	}
}

// Option configures a [Session] at construction time. Apply with
// [NewSession].
type Option func(*SessionConfig)

// WithCredentials sets the login username/password, sent automatically on
// connect (spec.md §4.C "Login"). Omit this Option to connect without
// logging in.
func WithCredentials(username, password string) Option {
	return func(c *SessionConfig) {
		c.Username = username
		c.Password = password
	}
}

// WithSSLMode sets peer-certificate verification strictness for both
// channels. Defaults to [SSLNone].
func WithSSLMode(mode SSLMode) Option {
	return func(c *SessionConfig) { c.SSL = mode }
}

// WithPlainTCP disables TLS on both channels, dialing the plain-TCP
// fallback ports instead (spec.md §6).
func WithPlainTCP() Option {
	return func(c *SessionConfig) { c.TLS = false }
}

// WithPorts overrides all four channel ports. Pass 0 for any port to keep
// its default.
func WithPorts(aciTLS, aciPlain, hcTLS, hcPlain int) Option {
	return func(c *SessionConfig) {
		if aciTLS != 0 {
			c.ACIPort = aciTLS
		}
		if aciPlain != 0 {
			c.ACIPlainPort = aciPlain
		}
		if hcTLS != 0 {
			c.HCPort = hcTLS
		}
		if hcPlain != 0 {
			c.HCPlainPort = hcPlain
		}
	}
}

// WithTimeout overrides the bound on dial+login and on every subsequent
// request/response exchange. Defaults to [DefaultTimeout].
func WithTimeout(d time.Duration) Option {
	return func(c *SessionConfig) { c.Timeout = d }
}

// WithFanOutLimit overrides the bounded-concurrency limit controllers use
// when refreshing state during initialize/resync. Defaults to
// [controllers.DefaultFanOutLimit].
func WithFanOutLimit(n int) Option {
	return func(c *SessionConfig) { c.FanOutLimit = n }
}

// WithLogger sets the [SLogger] every layer of the session logs through.
// Defaults to a discarding logger.
func WithLogger(logger vlog.SLogger) Option {
	return func(c *SessionConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithErrClassifier overrides the [ErrClassifier] used to tag log records.
// Defaults to [verror.DefaultErrClassifier].
func WithErrClassifier(ec verror.ErrClassifier) Option {
	return func(c *SessionConfig) {
		if ec != nil {
			c.ErrClassifier = ec
		}
	}
}
