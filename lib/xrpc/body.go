// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/bureau-foundation/rpds/lib/codec"
)

// DefaultMaxBodySize bounds request bodies when the Router was not
// given a limit. The bound applies to the body as received and again
// after Content-Encoding is removed.
const DefaultMaxBodySize int64 = 1 << 20

// zstdDecoder is shared across requests; DecodeAll is safe for
// concurrent use. WithDecoderMaxMemory caps the allocation a hostile
// frame header can request.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
	if err != nil {
		panic("xrpc: zstd decoder initialization failed: " + err.Error())
	}
}

// JSON decodes a JSON request body into T. As a result type it encodes
// T as a JSON response.
type JSON[T any] struct {
	Value T
}

// ExtractBody implements BodyExtractor.
func (j *JSON[T]) ExtractBody(ctx context.Context, request *http.Request) error {
	body, err := readBody(ctx, request)
	if err != nil {
		return err
	}
	return decodeJSON(body, &j.Value)
}

// CBOR decodes a CBOR request body into T. As a result type it encodes
// T as a CBOR response.
type CBOR[T any] struct {
	Value T
}

// ExtractBody implements BodyExtractor.
func (c *CBOR[T]) ExtractBody(ctx context.Context, request *http.Request) error {
	body, err := readBody(ctx, request)
	if err != nil {
		return err
	}
	return decodeCBOR(body, &c.Value)
}

// Input decodes a request body into T as CBOR when the Content-Type is
// application/cbor, and as JSON otherwise.
type Input[T any] struct {
	Value T
}

// ExtractBody implements BodyExtractor.
func (i *Input[T]) ExtractBody(ctx context.Context, request *http.Request) error {
	body, err := readBody(ctx, request)
	if err != nil {
		return err
	}
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType == contentTypeCBOR {
		return decodeCBOR(body, &i.Value)
	}
	return decodeJSON(body, &i.Value)
}

func decodeJSON[T any](body []byte, value *T) error {
	if err := json.Unmarshal(body, value); err != nil {
		return InvalidRequest(err.Error())
	}
	return validate(value)
}

func decodeCBOR[T any](body []byte, value *T) error {
	if err := codec.Unmarshal(body, value); err != nil {
		return InvalidRequest(err.Error())
	}
	return validate(value)
}

// readBody reads the whole body, bounded by the request's body limit,
// and removes any Content-Encoding. Read failures are connection
// errors; an oversized body or a corrupt encoding is InvalidRequest.
func readBody(ctx context.Context, request *http.Request) ([]byte, error) {
	if request.Body == nil {
		return nil, nil
	}
	limit := bodyLimit(ctx)
	raw, err := io.ReadAll(http.MaxBytesReader(nil, request.Body, limit))
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return nil, InvalidRequest(fmt.Sprintf("request body exceeds %d bytes", limit))
		}
		return nil, connectionError("reading request body", err)
	}
	return decodeContent(request.Header.Get("Content-Encoding"), raw, limit)
}

func decodeContent(encoding string, raw []byte, limit int64) ([]byte, error) {
	var decoded []byte
	var err error
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		decoded, err = gunzip(raw, limit)
	case "zstd":
		decoded, err = zstdDecoder.DecodeAll(raw, nil)
	default:
		return nil, InvalidRequest(fmt.Sprintf("unsupported Content-Encoding %q", encoding))
	}
	if err != nil {
		return nil, InvalidRequest(fmt.Sprintf("decoding %s request body: %v", encoding, err))
	}
	if int64(len(decoded)) > limit {
		return nil, InvalidRequest(fmt.Sprintf("decoded request body exceeds %d bytes", limit))
	}
	return decoded, nil
}

func gunzip(raw []byte, limit int64) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	// One byte past the limit is enough to detect overflow.
	return io.ReadAll(io.LimitReader(reader, limit+1))
}
