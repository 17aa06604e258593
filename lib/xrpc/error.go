// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xrpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a protocol-level failure with an HTTP status, a short
// machine-readable code, and a human-readable message. Error values
// are created only by the constructors in this file.
//
// Error implements the error interface with a value receiver, so
// extractors and handlers return it as a plain error and errors.As
// recovers it from any wrapping.
type Error struct {
	status  int
	code    string
	message string
}

// ErrConnection reports a failure below the protocol: the request body
// could not be read, a response could not be encoded, or a handler
// failed with an error that is not an Error. Its message is fixed so
// that internal detail never reaches the client.
var ErrConnection = Error{
	status:  http.StatusInternalServerError,
	code:    "internal_error",
	message: "An internal error occurred.",
}

// NotFound reports an unknown XRPC method or resource.
func NotFound() Error {
	return Error{
		status:  http.StatusNotFound,
		code:    "not_found",
		message: "The requested resource was not found.",
	}
}

// MethodNotAllowed reports a request whose HTTP method does not match
// the XRPC method kind (GET for queries, POST for procedures).
func MethodNotAllowed(request *http.Request) Error {
	return Error{
		status:  http.StatusMethodNotAllowed,
		code:    "method_not_allowed",
		message: fmt.Sprintf("Method `%s` for `%s` is not allowed", request.Method, request.URL.RequestURI()),
	}
}

// InvalidRequest reports input that could not be decoded or failed
// validation.
func InvalidRequest(message string) Error {
	return Error{
		status:  http.StatusBadRequest,
		code:    "invalid_request",
		message: message,
	}
}

// NotImplemented reports a known method whose business logic is not
// available on this server.
func NotImplemented(nsid string) Error {
	return Error{
		status:  http.StatusNotImplemented,
		code:    "not_implemented",
		message: fmt.Sprintf("Method %s is not implemented by this server.", nsid),
	}
}

// Status returns the HTTP status code.
func (e Error) Status() int { return e.status }

// Code returns the machine-readable error code (e.g., "not_found").
func (e Error) Code() string { return e.code }

// Message returns the human-readable message.
func (e Error) Message() string { return e.message }

// Error implements the error interface.
func (e Error) Error() string {
	return fmt.Sprintf("xrpc %d %s: %s", e.status, e.code, e.message)
}

// WriteResponse writes the error as a JSON envelope with the error's
// status code.
func (e Error) WriteResponse(w http.ResponseWriter) error {
	if e.status == 0 {
		e = ErrConnection
	}
	body, err := json.Marshal(errorEnvelope{Error: e.code, Message: e.message})
	if err != nil {
		return err
	}
	return writeBody(w, e.status, contentTypeJSON, body)
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AsError finds the Error in err's chain. When there is none, it
// returns ErrConnection and false: the caller should log err, because
// its text will not reach the client.
func AsError(err error) (Error, bool) {
	var xrpcError Error
	if errors.As(err, &xrpcError) {
		return xrpcError, true
	}
	return ErrConnection, false
}

// connectionError marks err as a transport failure. The result matches
// ErrConnection under errors.Is and errors.As, and keeps err for
// logging.
func connectionError(context string, err error) error {
	return fmt.Errorf("%s: %w: %w", context, ErrConnection, err)
}
