// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xrpc

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"reflect"
	"strings"

	"github.com/gorilla/schema"
)

// PartsExtractor fills the receiver from request metadata. It must not
// read the request body: parts extractors for one handler run
// concurrently with each other. ctx is cancelled as soon as any sibling
// extractor fails.
type PartsExtractor interface {
	ExtractParts(ctx context.Context, request *http.Request) error
}

// BodyExtractor fills the receiver by consuming the request body. At
// most one runs per request, after every parts extractor succeeded.
type BodyExtractor interface {
	ExtractBody(ctx context.Context, request *http.Request) error
}

// PartsPtr constrains a handler parameter type T whose pointer is a
// PartsExtractor. The composition functions allocate a T per request
// and extract into it through the pointer.
type PartsPtr[T any] interface {
	*T
	PartsExtractor
}

// BodyPtr constrains a handler parameter type T whose pointer is a
// BodyExtractor.
type BodyPtr[T any] interface {
	*T
	BodyExtractor
}

// Validator is implemented by decoded input types that check
// constraints the decoder cannot express (value ranges, required JSON
// fields). A Validate error becomes InvalidRequest with the error's
// text as the message.
type Validator interface {
	Validate() error
}

func validate(value any) error {
	validator, ok := value.(Validator)
	if !ok {
		return nil
	}
	if err := validator.Validate(); err != nil {
		var xrpcError Error
		if errors.As(err, &xrpcError) {
			return xrpcError
		}
		return InvalidRequest(err.Error())
	}
	return nil
}

// MethodGet requires an HTTP GET. XRPC queries use it.
type MethodGet struct{}

// ExtractParts implements PartsExtractor.
func (*MethodGet) ExtractParts(_ context.Context, request *http.Request) error {
	if request.Method != http.MethodGet {
		return MethodNotAllowed(request)
	}
	return nil
}

// MethodPost requires an HTTP POST. XRPC procedures use it.
type MethodPost struct{}

// ExtractParts implements PartsExtractor.
func (*MethodPost) ExtractParts(_ context.Context, request *http.Request) error {
	if request.Method != http.MethodPost {
		return MethodNotAllowed(request)
	}
	return nil
}

// queryDecoder decodes URL query strings into structs tagged with
// `schema:"name"` (options: required). Fields of a type implementing
// encoding.TextUnmarshaler, such as the lib/ref identifiers, are
// decoded through UnmarshalText. schema.Decoder caches struct metadata
// and is safe for concurrent use.
var queryDecoder = func() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}()

// Query decodes the URL query string into T, which must be a struct.
// Unknown parameters are ignored; a missing required parameter or an
// undecodable value is InvalidRequest. A slice of identifiers takes
// every value of a repeated parameter (?dids=a&dids=b), and one bad
// element rejects the request.
type Query[T any] struct {
	Value T
}

// ExtractParts implements PartsExtractor.
func (q *Query[T]) ExtractParts(_ context.Context, request *http.Request) error {
	values := request.URL.Query()
	if err := queryDecoder.Decode(&q.Value, values); err != nil {
		return InvalidRequest(err.Error())
	}
	if err := decodeTextSlices(&q.Value, values); err != nil {
		return err
	}
	return validate(&q.Value)
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// decodeTextSlices fills each slice field of *dst whose struct element
// type implements encoding.TextUnmarshaler from every value of its
// parameter. schema.Decoder reads such a field as a slice of nested
// structs and silently drops flat values, so these fields are decoded
// here after it.
func decodeTextSlices(dst any, values url.Values) error {
	target := reflect.ValueOf(dst).Elem()
	if target.Kind() != reflect.Struct {
		return nil
	}
	structType := target.Type()
	for i := range structType.NumField() {
		field := structType.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Slice {
			continue
		}
		element := field.Type.Elem()
		if element.Kind() != reflect.Struct || !reflect.PointerTo(element).Implements(textUnmarshalerType) {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("schema"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		raw, ok := values[name]
		if !ok {
			continue
		}
		decoded := reflect.MakeSlice(field.Type, len(raw), len(raw))
		for j, text := range raw {
			unmarshaler := decoded.Index(j).Addr().Interface().(encoding.TextUnmarshaler)
			if err := unmarshaler.UnmarshalText([]byte(text)); err != nil {
				return InvalidRequest(fmt.Sprintf("%s: %v", name, err))
			}
		}
		target.Field(i).Set(decoded)
	}
	return nil
}

// PeerAddr is the TCP address of the client. It comes from the
// per-connection context attached by the server, falling back to
// http.Request.RemoteAddr.
type PeerAddr struct {
	Addr netip.AddrPort
}

// ExtractParts implements PartsExtractor.
func (p *PeerAddr) ExtractParts(ctx context.Context, request *http.Request) error {
	if addr, ok := peerAddrFromContext(ctx); ok {
		p.Addr = addr
		return nil
	}
	addr, err := netip.ParseAddrPort(request.RemoteAddr)
	if err != nil {
		return connectionError("peer address unavailable", err)
	}
	p.Addr = addr
	return nil
}
