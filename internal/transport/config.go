// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop (config.go)

package transport

import (
	"crypto/tls"
	"errors"
	"net"
	"time"

	"github.com/go-vantage/vantage/verror"
)

// VerifyMode controls peer-certificate verification for a TLS dial.
//
// spec.md §4.A: controllers ship self-signed certificates, so verification
// is off by default; callers that control their controller's certificate
// chain can opt into stricter modes.
type VerifyMode int

const (
	// VerifyNone disables peer-certificate verification entirely. This is
	// the default, matching spec.md's "off by default".
	VerifyNone VerifyMode = iota

	// VerifyHostnameOnly verifies that the leaf certificate matches the
	// dialed hostname, but does not verify the chain or require it to be
	// anchored in a trusted root (accepts self-signed certificates
	// presenting the right name).
	VerifyHostnameOnly

	// VerifyStrict performs full chain-of-trust and hostname verification,
	// equivalent to the standard library's default TLS client behavior.
	VerifyStrict
)

// Config holds common configuration for transport operations.
//
// Pass this to constructor functions to pre-wire dependencies. All fields
// have sensible defaults set by [NewConfig].
type Config struct {
	// Dialer is used by [*ConnectFunc].
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [verror.DefaultErrClassifier].
	ErrClassifier verror.ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dialer:        &net.Dialer{},
		ErrClassifier: verror.DefaultErrClassifier,
		TimeNow:       time.Now,
	}
}

// TLSConfig builds a new [*tls.Config] for serverName under the given
// [VerifyMode]; all other fields keep their zero-value defaults.
func TLSConfig(mode VerifyMode, serverName string) *tls.Config {
	cfg := &tls.Config{ServerName: serverName}
	switch mode {
	case VerifyStrict:
		// Leave InsecureSkipVerify false and VerifyPeerCertificate nil:
		// the standard chain-of-trust + hostname check applies.
	case VerifyHostnameOnly:
		cfg.InsecureSkipVerify = true
		cfg.VerifyConnection = verifyHostnameOnly(serverName)
	case VerifyNone:
		cfg.InsecureSkipVerify = true
	}
	return cfg
}

// verifyHostnameOnly returns a [tls.Config.VerifyConnection] callback that
// checks the presented leaf certificate's name against serverName without
// requiring a trusted chain of issuance.
func verifyHostnameOnly(serverName string) func(tls.ConnectionState) error {
	return func(state tls.ConnectionState) error {
		if len(state.PeerCertificates) == 0 {
			return errors.New("transport: no peer certificates presented")
		}
		return state.PeerCertificates[0].VerifyHostname(serverName)
	}
}
