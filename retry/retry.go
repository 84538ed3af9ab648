// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package retry provides bounded exponential backoff for calls to the
// embedding and index providers.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/vibesearch/core"
	"github.com/poiesic/vibesearch/index"
)

// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

// Transient reports whether an error is worth retrying. Schema and
// validation errors are permanent: the same call fails the same way on
// every attempt, so they fail fast. Everything else, including provider
// transport errors that carry no sentinel, is treated as transient.
func Transient(err error) bool {
	switch {
	case errors.Is(err, index.ErrSchemaMismatch),
		errors.Is(err, index.ErrNotInitialized),
		errors.Is(err, index.ErrCollectionExists),
		errors.Is(err, index.ErrEmptyVector),
		errors.Is(err, core.ErrInvalidSongRecord):
		return false
	}
	return true
}

// WithBackoff retries an operation with exponential backoff.
// retryable: predicate deciding whether a failure is worth another
// attempt; nil retries every error.
// maxAttempts: maximum number of attempts (must be > 0)
// baseDelay: base delay between retries (doubles on each retry)
// Returns the error from the last attempt if all attempts fail, or the
// first non-retryable error immediately.
func WithBackoff(ctx context.Context, operation func() error, retryable func(error) bool, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil // Success
		}

		if retryable != nil && !retryable(lastErr) {
			slog.Debug("operation failed permanently", "attempt", attempt, "error", lastErr)
			return lastErr
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "error", lastErr)

		// Don't sleep after the last attempt
		if attempt == maxAttempts {
			break
		}

		// Calculate exponential backoff: baseDelay * 2^(attempt-1)
		delay := baseDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
		}

		// Sleep with context awareness
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Continue to next attempt
		}
	}

	return lastErr
}
