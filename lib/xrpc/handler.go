// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xrpc

import (
	"context"
	"net/http"
)

// The Handle and HandleBody functions below are one per arity. Go has
// no variadic type parameters, so each arity spells out its extractor
// types; the bodies are otherwise identical.

// extractParts runs every extractor concurrently and returns the first
// failure without waiting for the others. The derived context is
// cancelled on return, so slow extractors that honor it stop early;
// their results are discarded either way. A panic in an extractor is
// re-raised on the calling goroutine, where Recover can contain it.
func extractParts(request *http.Request, extractors ...PartsExtractor) error {
	switch len(extractors) {
	case 0:
		return nil
	case 1:
		return extractors[0].ExtractParts(request.Context(), request)
	}

	ctx, cancel := context.WithCancel(request.Context())
	defer cancel()

	// Buffered so that extractors still running after an early return
	// can deliver their result and exit.
	results := make(chan extractResult, len(extractors))
	for _, extractor := range extractors {
		go func() {
			defer func() {
				if recovered := recover(); recovered != nil {
					results <- extractResult{panicked: true, panicValue: recovered}
				}
			}()
			results <- extractResult{err: extractor.ExtractParts(ctx, request)}
		}()
	}
	for range extractors {
		result := <-results
		if result.panicked {
			panic(result.panicValue)
		}
		if result.err != nil {
			return result.err
		}
	}
	return nil
}

type extractResult struct {
	err        error
	panicked   bool
	panicValue any
}

// Handle0 builds a handler for a function that takes no extractors.
func Handle0[R Responder](fn func(context.Context) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		result, err := fn(request.Context())
		respond(w, request, result, err)
	})
}

// Handle1 builds a handler for a function of one parts extractor.
func Handle1[A any, PA PartsPtr[A], R Responder](fn func(context.Context, A) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		if err := extractParts(request, PA(&a)); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a)
		respond(w, request, result, err)
	})
}

// Handle2 builds a handler for a function of 2 parts extractors.
//
//	xrpc.Handle2(func(ctx context.Context, _ xrpc.MethodGet, query xrpc.Query[Params]) (xrpc.JSON[Output], error) { ... })
func Handle2[A, B any, PA PartsPtr[A], PB PartsPtr[B], R Responder](fn func(context.Context, A, B) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		if err := extractParts(request, PA(&a), PB(&b)); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b)
		respond(w, request, result, err)
	})
}

// Handle3 builds a handler for a function of 3 parts extractors.
func Handle3[A, B, C any, PA PartsPtr[A], PB PartsPtr[B], PC PartsPtr[C], R Responder](fn func(context.Context, A, B, C) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		var c C
		if err := extractParts(request, PA(&a), PB(&b), PC(&c)); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b, c)
		respond(w, request, result, err)
	})
}

// Handle4 builds a handler for a function of 4 parts extractors.
func Handle4[A, B, C, D any, PA PartsPtr[A], PB PartsPtr[B], PC PartsPtr[C], PD PartsPtr[D], R Responder](fn func(context.Context, A, B, C, D) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		var c C
		var d D
		if err := extractParts(request, PA(&a), PB(&b), PC(&c), PD(&d)); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b, c, d)
		respond(w, request, result, err)
	})
}

// Handle5 builds a handler for a function of 5 parts extractors.
func Handle5[A, B, C, D, E any, PA PartsPtr[A], PB PartsPtr[B], PC PartsPtr[C], PD PartsPtr[D], PE PartsPtr[E], R Responder](fn func(context.Context, A, B, C, D, E) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		var c C
		var d D
		var e E
		if err := extractParts(request, PA(&a), PB(&b), PC(&c), PD(&d), PE(&e)); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b, c, d, e)
		respond(w, request, result, err)
	})
}

// Handle6 builds a handler for a function of 6 parts extractors.
func Handle6[A, B, C, D, E, F any, PA PartsPtr[A], PB PartsPtr[B], PC PartsPtr[C], PD PartsPtr[D], PE PartsPtr[E], PF PartsPtr[F], R Responder](fn func(context.Context, A, B, C, D, E, F) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		var c C
		var d D
		var e E
		var f F
		if err := extractParts(request, PA(&a), PB(&b), PC(&c), PD(&d), PE(&e), PF(&f)); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b, c, d, e, f)
		respond(w, request, result, err)
	})
}

// HandleBody1 builds a handler for a function whose only parameter is a
// body extractor.
func HandleBody1[A any, PA BodyPtr[A], R Responder](fn func(context.Context, A) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		if err := PA(&a).ExtractBody(request.Context(), request); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a)
		respond(w, request, result, err)
	})
}

// HandleBody2 builds a handler for a function of 1 parts
// extractor followed by a body extractor.
//
//	xrpc.HandleBody2(func(ctx context.Context, _ xrpc.MethodPost, input xrpc.Input[Params]) (xrpc.Empty, error) { ... })
func HandleBody2[A, B any, PA PartsPtr[A], PB BodyPtr[B], R Responder](fn func(context.Context, A, B) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		if err := extractParts(request, PA(&a)); err != nil {
			writeError(w, request, err)
			return
		}
		if err := PB(&b).ExtractBody(request.Context(), request); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b)
		respond(w, request, result, err)
	})
}

// HandleBody3 builds a handler for a function of 2 parts
// extractors followed by a body extractor.
func HandleBody3[A, B, C any, PA PartsPtr[A], PB PartsPtr[B], PC BodyPtr[C], R Responder](fn func(context.Context, A, B, C) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		var c C
		if err := extractParts(request, PA(&a), PB(&b)); err != nil {
			writeError(w, request, err)
			return
		}
		if err := PC(&c).ExtractBody(request.Context(), request); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b, c)
		respond(w, request, result, err)
	})
}

// HandleBody4 builds a handler for a function of 3 parts
// extractors followed by a body extractor.
func HandleBody4[A, B, C, D any, PA PartsPtr[A], PB PartsPtr[B], PC PartsPtr[C], PD BodyPtr[D], R Responder](fn func(context.Context, A, B, C, D) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		var c C
		var d D
		if err := extractParts(request, PA(&a), PB(&b), PC(&c)); err != nil {
			writeError(w, request, err)
			return
		}
		if err := PD(&d).ExtractBody(request.Context(), request); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b, c, d)
		respond(w, request, result, err)
	})
}

// HandleBody5 builds a handler for a function of 4 parts
// extractors followed by a body extractor.
func HandleBody5[A, B, C, D, E any, PA PartsPtr[A], PB PartsPtr[B], PC PartsPtr[C], PD PartsPtr[D], PE BodyPtr[E], R Responder](fn func(context.Context, A, B, C, D, E) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		var c C
		var d D
		var e E
		if err := extractParts(request, PA(&a), PB(&b), PC(&c), PD(&d)); err != nil {
			writeError(w, request, err)
			return
		}
		if err := PE(&e).ExtractBody(request.Context(), request); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b, c, d, e)
		respond(w, request, result, err)
	})
}

// HandleBody6 builds a handler for a function of 5 parts
// extractors followed by a body extractor.
func HandleBody6[A, B, C, D, E, F any, PA PartsPtr[A], PB PartsPtr[B], PC PartsPtr[C], PD PartsPtr[D], PE PartsPtr[E], PF BodyPtr[F], R Responder](fn func(context.Context, A, B, C, D, E, F) (R, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		var a A
		var b B
		var c C
		var d D
		var e E
		var f F
		if err := extractParts(request, PA(&a), PB(&b), PC(&c), PD(&d), PE(&e)); err != nil {
			writeError(w, request, err)
			return
		}
		if err := PF(&f).ExtractBody(request.Context(), request); err != nil {
			writeError(w, request, err)
			return
		}
		result, err := fn(request.Context(), a, b, c, d, e, f)
		respond(w, request, result, err)
	})
}
