package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"signal-dashboard/config"
	"signal-dashboard/observability"
)

// envelope is the wrapper every signals API response is expected to use
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *envelopeError  `json:"error"`
	Meta    *envelopeMeta   `json:"meta"`
}

type envelopeError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type envelopeMeta struct {
	Timestamp string `json:"timestamp"`
	CacheHit  *bool  `json:"cache_hit"`
}

// parseEnvelope decodes body as an envelope. ok is false when the body is not a JSON
// object or lacks the success discriminator.
func parseEnvelope(body []byte) (*envelope, bool) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if env.Success == nil {
		return &env, false
	}
	return &env, true
}

// classifyResponse maps a completed HTTP exchange to either the data payload or an APIError.
// statusLine is the response's status line, e.g. "503 Service Unavailable".
func classifyResponse(status int, statusLine string, body []byte) (json.RawMessage, *envelopeMeta, error) {
	env, ok := parseEnvelope(body)

	if ok && !*env.Success {
		apiErr := &APIError{
			Kind:    KindLogical,
			Message: "request was not successful",
			Status:  status,
		}
		if env.Error != nil {
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
			apiErr.Code = env.Error.Code
			apiErr.Details = env.Error.Details
		}
		return nil, env.Meta, apiErr
	}

	if status < 200 || status > 299 {
		apiErr := &APIError{
			Kind:    KindHTTP,
			Message: httpErrorMessage(status, statusLine),
			Status:  status,
		}
		// some proxies return an error object without the discriminator
		if env != nil && env.Error != nil {
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
			apiErr.Code = env.Error.Code
			apiErr.Details = env.Error.Details
		}
		return nil, nil, apiErr
	}

	if !ok {
		return nil, nil, &APIError{
			Kind:    KindNetwork,
			Message: "response body is not a valid envelope",
			Code:    CodeNetworkError,
		}
	}

	return env.Data, env.Meta, nil
}

// httpErrorMessage prefers the reason phrase the server sent, then the standard text,
// then the bare code.
func httpErrorMessage(status int, statusLine string) string {
	reason := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(statusLine), strconv.Itoa(status)))
	if reason == "" {
		reason = http.StatusText(status)
	}
	if reason == "" {
		return fmt.Sprintf("HTTP %d", status)
	}
	return fmt.Sprintf("HTTP %d: %s", status, reason)
}

type listShapeKind int

const (
	shapeNull listShapeKind = iota
	shapeBare
	shapeWrapped
	shapeOther
)

func (k listShapeKind) String() string {
	switch k {
	case shapeNull:
		return "null"
	case shapeBare:
		return "bare"
	case shapeWrapped:
		return "wrapped"
	default:
		return "other"
	}
}

// listShape is a list payload classified by shape. items holds the JSON array for
// bare and wrapped payloads.
type listShape struct {
	kind  listShapeKind
	items json.RawMessage
}

// classifyList recognizes a bare array, an {"items": [...]} wrapper and null
func classifyList(raw json.RawMessage) listShape {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return listShape{kind: shapeNull}
	}

	switch trimmed[0] {
	case '[':
		return listShape{kind: shapeBare, items: trimmed}
	case '{':
		var wrapper struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err == nil {
			items := bytes.TrimSpace(wrapper.Items)
			if len(items) > 0 && items[0] == '[' {
				return listShape{kind: shapeWrapped, items: items}
			}
		}
	}

	return listShape{kind: shapeOther}
}

// decodeList flattens a list payload into its elements.
// Under the lenient policy an unrecognized shape yields an empty list and is logged and counted.
func decodeList[T any](raw json.RawMessage, resource, policy string, metrics *observability.Metrics) ([]T, error) {
	shape := classifyList(raw)

	switch shape.kind {
	case shapeNull:
		return []T{}, nil
	case shapeOther:
		if policy == config.ListShapeStrict {
			return nil, &APIError{
				Kind:    KindLogical,
				Message: fmt.Sprintf("unexpected list payload for %s", resource),
				Status:  http.StatusOK,
				Code:    CodeUnexpectedShape,
			}
		}
		observability.WithResource(resource).Warn("unexpected list payload, treating as empty",
			"payload_bytes", len(raw))
		metrics.RecordListShapeFallback(resource)
		return []T{}, nil
	}

	items := make([]T, 0)
	if err := json.Unmarshal(shape.items, &items); err != nil {
		return nil, NewNetworkError(fmt.Errorf("failed to decode %s list: %w", resource, err))
	}
	return items, nil
}

// decodeObject decodes a single-object payload. A null payload is reported as EMPTY_PAYLOAD.
func decodeObject[T any](raw json.RawMessage, resource string) (*T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &APIError{
			Kind:    KindLogical,
			Message: fmt.Sprintf("%s response contained no data", resource),
			Status:  http.StatusOK,
			Code:    CodeEmptyPayload,
		}
	}

	var out T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, NewNetworkError(fmt.Errorf("failed to decode %s: %w", resource, err))
	}
	return &out, nil
}
