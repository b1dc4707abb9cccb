// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/slackr/lib/clock"
)

// Predicate decides whether a handler should see an envelope. It must
// be pure and fast: it runs on the listen loop.
type Predicate func(Envelope) bool

// Handler processes one envelope. It has no error return: a handler
// that can fail must deal with the failure itself. The registry waits
// for the handler to return before evaluating the next predicate.
type Handler func(ctx context.Context, envelope Envelope)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// HandlerTimeout, if positive, cancels each handler's context
	// after this long with cause ErrHandlerTimeout. Handlers must
	// watch ctx for this to have any effect.
	HandlerTimeout time.Duration

	// Clock arms handler timeouts. Nil uses clock.Real().
	Clock clock.Clock

	// Logger receives predicate and handler faults. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Registry is an ordered list of (predicate, handler) pairs. Pairs are
// kept in registration order with no deduplication. Register and
// Dispatch are safe to call concurrently; a Dispatch works on the list
// as it was when Dispatch began.
type Registry struct {
	mu     sync.RWMutex
	routes []route

	handlerTimeout time.Duration
	clock          clock.Clock
	logger         *slog.Logger
}

type route struct {
	predicate Predicate
	handler   Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry(config RegistryConfig) *Registry {
	registryClock := config.Clock
	if registryClock == nil {
		registryClock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlerTimeout: config.HandlerTimeout,
		clock:          registryClock,
		logger:         logger,
	}
}

// Register appends a pair. Panics if either function is nil.
func (r *Registry) Register(predicate Predicate, handler Handler) {
	if predicate == nil {
		panic("socketmode: Register with nil predicate")
	}
	if handler == nil {
		panic("socketmode: Register with nil handler")
	}
	r.mu.Lock()
	r.routes = append(r.routes, route{predicate: predicate, handler: handler})
	r.mu.Unlock()
}

// Len returns the number of registered pairs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// Dispatch evaluates every predicate in registration order and runs
// the handler of each pair that matches, waiting for it to return
// before moving on. It returns the number of handlers run.
//
// A predicate that panics is logged and treated as not matching. A
// handler that panics is logged and dispatch continues with the next
// pair.
func (r *Registry) Dispatch(ctx context.Context, envelope Envelope) int {
	r.mu.RLock()
	routes := r.routes[:len(r.routes):len(r.routes)]
	r.mu.RUnlock()

	invoked := 0
	for index, entry := range routes {
		if !r.matches(index, entry.predicate, envelope) {
			continue
		}
		r.invoke(ctx, index, entry.handler, envelope)
		invoked++
	}
	return invoked
}

func (r *Registry) matches(index int, predicate Predicate, envelope Envelope) (matched bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Error("predicate panicked, treating as no match",
				"route", index,
				"envelope_id", envelope.EnvelopeID,
				"panic", fmt.Sprint(recovered),
			)
			matched = false
		}
	}()
	return predicate(envelope)
}

func (r *Registry) invoke(ctx context.Context, index int, handler Handler, envelope Envelope) {
	handlerCtx := ctx
	if r.handlerTimeout > 0 {
		var cancel context.CancelCauseFunc
		handlerCtx, cancel = context.WithCancelCause(ctx)
		timer := r.clock.AfterFunc(r.handlerTimeout, func() { cancel(ErrHandlerTimeout) })
		defer func() {
			timer.Stop()
			if errors.Is(context.Cause(handlerCtx), ErrHandlerTimeout) {
				r.logger.Warn("handler exceeded timeout",
					"route", index,
					"envelope_id", envelope.EnvelopeID,
					"timeout", r.handlerTimeout,
				)
			}
			cancel(nil)
		}()
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Error("handler panicked",
				"route", index,
				"envelope_id", envelope.EnvelopeID,
				"panic", fmt.Sprint(recovered),
			)
		}
	}()

	handler(handlerCtx, envelope)
}
