// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xrpc

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bureau-foundation/rpds/lib/codec"
	"github.com/bureau-foundation/rpds/lib/netutil"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"
)

// Responder converts a handler result into an HTTP response. An
// implementation encodes fully before writing the status line, so an
// encoding failure returned from WriteResponse can still be reported
// as ErrConnection.
type Responder interface {
	WriteResponse(w http.ResponseWriter) error
}

// Empty is the result of a procedure with no output: a 200 response
// with an empty body.
type Empty struct{}

// WriteResponse implements Responder.
func (Empty) WriteResponse(w http.ResponseWriter) error {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusOK)
	return nil
}

// WriteResponse encodes the value as a JSON 200 response.
func (j JSON[T]) WriteResponse(w http.ResponseWriter) error {
	body, err := json.Marshal(j.Value)
	if err != nil {
		return err
	}
	return writeBody(w, http.StatusOK, contentTypeJSON, body)
}

// WriteResponse encodes the value as a CBOR 200 response.
func (c CBOR[T]) WriteResponse(w http.ResponseWriter) error {
	body, err := codec.Marshal(c.Value)
	if err != nil {
		return err
	}
	return writeBody(w, http.StatusOK, contentTypeCBOR, body)
}

func writeBody(w http.ResponseWriter, status int, contentType string, body []byte) error {
	header := w.Header()
	header.Set("Content-Type", contentType)
	header.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

// respond writes a handler's result, or its error when err is non-nil.
func respond[R Responder](w http.ResponseWriter, request *http.Request, result R, err error) {
	if err != nil {
		writeError(w, request, err)
		return
	}
	tracked := &headerTracker{ResponseWriter: w}
	if err := result.WriteResponse(tracked); err != nil {
		if tracked.wroteHeader {
			// The status line is out; nothing more can reach the client.
			logger := Logger(request.Context())
			if netutil.IsExpectedCloseError(err) {
				logger.Debug("client disconnected during xrpc response", "error", err)
			} else {
				logger.Warn("writing xrpc response", "error", err)
			}
			return
		}
		writeError(w, request, connectionError("encoding xrpc response", err))
	}
}

// headerTracker records whether a Responder got as far as writing the
// status line.
type headerTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (t *headerTracker) WriteHeader(status int) {
	t.wroteHeader = true
	t.ResponseWriter.WriteHeader(status)
}

func (t *headerTracker) Write(data []byte) (int, error) {
	t.wroteHeader = true
	return t.ResponseWriter.Write(data)
}

// writeError renders err as an Error envelope. Server-side failures
// are logged with the original error, which the client never sees.
func writeError(w http.ResponseWriter, request *http.Request, err error) {
	xrpcError, ok := AsError(err)
	if !ok || xrpcError.Status() >= http.StatusInternalServerError {
		Logger(request.Context()).Error("xrpc request failed", "error", err)
	}
	if writeErr := xrpcError.WriteResponse(w); writeErr != nil {
		Logger(request.Context()).Warn("writing xrpc error response", "error", writeErr, "status", xrpcError.Status())
	}
}
