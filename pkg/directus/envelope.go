package directus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ResponseMeta carries transport diagnostics for one request.
type ResponseMeta struct {
	StatusCode int           `json:"status_code"          yaml:"status_code"`
	Method     string        `json:"method"               yaml:"method"`
	URL        string        `json:"url"                  yaml:"url"`
	Header     http.Header   `json:"header,omitempty"     yaml:"header,omitempty"`
	Duration   time.Duration `json:"duration"             yaml:"duration"`
	RequestID  string        `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// Envelope is the normalized result of every data operation.
//
// Data and Meta hold the corresponding members of the Directus response body
// verbatim. Errors holds upstream errors, or a single TRANSPORT_ERROR entry
// when the request never produced a response. Headers is nil when the client
// strips headers.
type Envelope struct {
	Data    json.RawMessage `json:"data,omitempty"    yaml:"data,omitempty"`
	Meta    json.RawMessage `json:"meta,omitempty"    yaml:"meta,omitempty"`
	Errors  []APIError      `json:"errors,omitempty"  yaml:"errors,omitempty"`
	Headers *ResponseMeta   `json:"headers,omitempty" yaml:"headers,omitempty"`

	// StatusCode is the HTTP status, or 0 after a transport failure. It is
	// kept when headers are stripped.
	StatusCode int `json:"-" yaml:"-"`

	// Transport is set when the request failed below HTTP.
	Transport *TransportError `json:"-" yaml:"-"`
}

// DecodeEnvelope builds an envelope from a response status and body. A body
// that is not a JSON object yields a single INVALID_PAYLOAD error.
func DecodeEnvelope(statusCode int, body []byte) *Envelope {
	envelope := &Envelope{StatusCode: statusCode}

	if len(bytes.TrimSpace(body)) == 0 {
		return envelope
	}

	var decoded struct {
		Data   json.RawMessage `json:"data"`
		Meta   json.RawMessage `json:"meta"`
		Errors []APIError      `json:"errors"`
	}

	err := json.Unmarshal(body, &decoded)
	if err != nil {
		envelope.Errors = []APIError{
			NewAPIError(ErrorCodeInvalidPayload, fmt.Sprintf("response body is not valid JSON: %v", err)),
		}

		return envelope
	}

	envelope.Data = decoded.Data
	envelope.Meta = decoded.Meta
	envelope.Errors = decoded.Errors

	return envelope
}

// NewTransportEnvelope builds the envelope returned when a request failed
// before any response arrived.
func NewTransportEnvelope(transportErr *TransportError, meta *ResponseMeta) *Envelope {
	entry := NewAPIError(ErrorCodeTransport, transportErr.Error())
	entry.Extensions["reason"] = transportErr.Code

	return &Envelope{
		Errors:    []APIError{entry},
		Headers:   meta,
		Transport: transportErr,
	}
}

// OK reports whether the request succeeded with a 2xx status and no errors.
func (e *Envelope) OK() bool {
	return e.Transport == nil &&
		e.StatusCode >= http.StatusOK && e.StatusCode < http.StatusMultipleChoices &&
		len(e.Errors) == 0
}

// Err returns nil for a successful envelope, the *TransportError after a
// transport failure, and a *ResponseError otherwise.
func (e *Envelope) Err() error {
	if e.Transport != nil {
		return e.Transport
	}

	if e.OK() {
		return nil
	}

	return &ResponseError{
		StatusCode: e.StatusCode,
		Errors:     e.Errors,
		Envelope:   e,
	}
}

// Decode unmarshals the data member into v.
func (e *Envelope) Decode(v interface{}) error {
	err := e.Err()
	if err != nil {
		return err
	}

	if isEmptyJSON(e.Data) {
		return ErrNoData
	}

	err = json.Unmarshal(e.Data, v)
	if err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}

	return nil
}

// DecodeMeta unmarshals the meta member into v.
func (e *Envelope) DecodeMeta(v interface{}) error {
	if isEmptyJSON(e.Meta) {
		return ErrNoData
	}

	err := json.Unmarshal(e.Meta, v)
	if err != nil {
		return fmt.Errorf("decoding response meta: %w", err)
	}

	return nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
