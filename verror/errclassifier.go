// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop (errclassifier.go)

package verror

import "github.com/bassosimone/errclass"

// ErrClassifier classifies errors into categorical strings for structured
// logging (e.g. "ETIMEDOUT", "ECONNRESET"), independently of the
// higher-level [Kind] taxonomy. A dial failure is always [Kind] =
// [KindConnect]; the classifier additionally records *why* at the
// OS-error level.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	cfg.ErrClassifier = ErrClassifierFunc(errclass.New)
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier classifies errors using
// [github.com/bassosimone/errclass], the same OS-error-code classifier used
// throughout the corpus's network primitives.
var DefaultErrClassifier = ErrClassifierFunc(errclass.New)
