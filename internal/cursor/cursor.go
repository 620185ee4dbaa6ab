package cursor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/hadi77ir/go-searchpage/query"
)

// Codec turns a sort key (the sort values of the last hit of a page) into
// an opaque token and back
// Decoded keys are not Go-typed copies of the encoded ones: the JSON codec
// returns numbers as json.Number, so compare keys by their encoding or
// convert the numbers before comparing values
type Codec interface {
	// Encode returns the token for key
	Encode(key []any) (string, error)
	// Decode returns the sort key held by token
	// An empty token decodes to a nil key without error
	Decode(token string) ([]any, error)
}

var (
	// JSON is the default codec: base64 (standard, padded) of the JSON array
	JSON Codec = jsonCodec{}

	// CBOR is the compact codec: base64 (URL-safe) of the CBOR array
	CBOR Codec = newCBORCodec()
)

// ForEncoding returns the codec registered under name, defaulting to JSON
func ForEncoding(name string) Codec {
	if name == query.CursorEncodingCBOR {
		return CBOR
	}
	return JSON
}

// Encode encodes key with the JSON codec
func Encode(key []any) (string, error) {
	return JSON.Encode(key)
}

// Decode decodes token with the JSON codec
func Decode(token string) ([]any, error) {
	return JSON.Decode(token)
}

type jsonCodec struct{}

func (jsonCodec) Encode(key []any) (string, error) {
	if key == nil {
		key = []any{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return "", fmt.Errorf("failed to marshal cursor data: %w", err)
	}

	return base64.StdEncoding.EncodeToString(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (jsonCodec) Decode(token string) ([]any, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode cursor: %v", query.ErrInvalidCursor, err)
	}

	// Numbers stay json.Number so integer sort values keep their precision
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal cursor data: %v", query.ErrInvalidCursor, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after cursor", query.ErrInvalidCursor)
	}

	key, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: cursor is %T, not a list of sort values", query.ErrInvalidCursor, value)
	}

	return key, nil
}

type cborCodec struct {
	dec cbor.DecMode
}

func newCBORCodec() cborCodec {
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return cborCodec{dec: dec}
}

func (c cborCodec) Encode(key []any) (string, error) {
	if key == nil {
		key = []any{}
	}

	data, err := cbor.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor data: %w", err)
	}

	return base64.URLEncoding.EncodeToString(data), nil
}

func (c cborCodec) Decode(token string) ([]any, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode cursor: %v", query.ErrInvalidCursor, err)
	}

	var value any
	if err := c.dec.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal cursor data: %v", query.ErrInvalidCursor, err)
	}

	key, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: cursor is %T, not a list of sort values", query.ErrInvalidCursor, value)
	}

	return key, nil
}
