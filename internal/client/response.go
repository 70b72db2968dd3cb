package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Shape identifies which envelope a response body used.
type Shape int

const (
	ShapeUnrecognized Shape = iota
	// ShapeWrapped is a {"success": false} envelope. Successful wrapped
	// envelopes are unwrapped and reported as the shape of their data.
	ShapeWrapped
	ShapePaginated
	ShapeList
	ShapeSingle
)

func (s Shape) String() string {
	switch s {
	case ShapeWrapped:
		return "wrapped"
	case ShapePaginated:
		return "paginated"
	case ShapeList:
		return "list"
	case ShapeSingle:
		return "single"
	default:
		return "unrecognized"
	}
}

// ListPayload is a list response with its paging metadata.
type ListPayload struct {
	Items      []json.RawMessage
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
}

// Envelope is the decoded form of a merchant API response body.
type Envelope struct {
	Shape   Shape
	List    ListPayload     // ShapePaginated, ShapeList
	Entity  json.RawMessage // ShapeSingle
	Message string          // ShapeWrapped
	Code    string          // ShapeWrapped
}

// DecodeEnvelope classifies body. idKeys are the identity fields of the
// expected entity type; "id" is always accepted. The checks run in order:
// success flag, items array, bare array, identity field.
func DecodeEnvelope(body []byte, idKeys ...string) (Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Envelope{Shape: ShapeUnrecognized}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Envelope{}, fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
		}
		return Envelope{Shape: ShapeList, List: listOf(items)}, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Envelope{}, fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
		}
		return decodeObject(trimmed, obj, idKeys)

	default:
		return Envelope{Shape: ShapeUnrecognized}, nil
	}
}

func decodeObject(raw []byte, obj map[string]json.RawMessage, idKeys []string) (Envelope, error) {
	if flag, ok := obj["success"]; ok {
		var success bool
		if json.Unmarshal(flag, &success) == nil {
			if !success {
				msg, code := messageFromObject(obj)
				if msg == "" {
					msg = ErrRequestFailed
				}
				return Envelope{Shape: ShapeWrapped, Message: msg, Code: code}, nil
			}
			if data, ok := obj["data"]; ok {
				return DecodeEnvelope(data, idKeys...)
			}
		}
	}

	if itemsRaw, ok := obj["items"]; ok && isArray(itemsRaw) {
		var items []json.RawMessage
		if err := json.Unmarshal(itemsRaw, &items); err != nil {
			return Envelope{}, fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
		}
		list := listOf(items)
		if n, ok := intField(obj, "totalCount"); ok {
			list.TotalCount = n
		}
		if n, ok := intField(obj, "page"); ok {
			list.Page = n
		}
		if n, ok := intField(obj, "pageSize"); ok {
			list.PageSize = n
		}
		if n, ok := intField(obj, "totalPages"); ok {
			list.TotalPages = n
		}
		return Envelope{Shape: ShapePaginated, List: list}, nil
	}

	if hasIdentity(obj, idKeys) {
		return Envelope{Shape: ShapeSingle, Entity: json.RawMessage(raw)}, nil
	}

	return Envelope{Shape: ShapeUnrecognized}, nil
}

// AsList returns the items of a list-like envelope. A single entity is
// returned as a one-element list.
func (e Envelope) AsList() (ListPayload, error) {
	switch e.Shape {
	case ShapePaginated, ShapeList:
		return e.List, nil
	case ShapeSingle:
		return listOf([]json.RawMessage{e.Entity}), nil
	case ShapeWrapped:
		return ListPayload{}, e.failure()
	case ShapeUnrecognized:
		return ListPayload{}, ErrUnexpectedFormat
	default:
		return ListPayload{}, fmt.Errorf("%w: shape %d", ErrUnexpectedFormat, e.Shape)
	}
}

// AsSingle returns the entity of a single-entity envelope. List shapes are
// rejected.
func (e Envelope) AsSingle() (json.RawMessage, error) {
	switch e.Shape {
	case ShapeSingle:
		return e.Entity, nil
	case ShapeWrapped:
		return nil, e.failure()
	case ShapePaginated, ShapeList, ShapeUnrecognized:
		return nil, ErrUnexpectedFormat
	default:
		return nil, fmt.Errorf("%w: shape %d", ErrUnexpectedFormat, e.Shape)
	}
}

// Err returns the failure carried by a wrapped envelope, if any.
func (e Envelope) Err() error {
	if e.Shape == ShapeWrapped {
		return e.failure()
	}
	return nil
}

func (e Envelope) failure() *APIError {
	return &APIError{Message: e.Message, BackendMessage: e.Message, Code: e.Code}
}

func hasIdentity(obj map[string]json.RawMessage, idKeys []string) bool {
	for _, key := range idKeys {
		if v, ok := obj[key]; ok && !isNull(v) {
			return true
		}
	}
	v, ok := obj["id"]
	return ok && !isNull(v)
}

func listOf(items []json.RawMessage) ListPayload {
	if items == nil {
		items = []json.RawMessage{}
	}
	return ListPayload{
		Items:      items,
		TotalCount: len(items),
		Page:       1,
		PageSize:   len(items),
		TotalPages: 1,
	}
}

// ExtractMessage pulls the backend's error message and code out of a body.
// Fields tried: message, error (string), error.message, msg, title, errors[0].
func ExtractMessage(body []byte) (message, code string) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &obj); err != nil {
		return strings.TrimSpace(string(body)), ""
	}
	return messageFromObject(obj)
}

func messageFromObject(obj map[string]json.RawMessage) (message, code string) {
	if s := stringField(obj, "message"); s != "" {
		message = s
	}
	if raw, ok := obj["error"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if message == "" {
				message = s
			}
		} else {
			var nested map[string]json.RawMessage
			if json.Unmarshal(raw, &nested) == nil {
				if message == "" {
					message = stringField(nested, "message")
				}
				code = stringField(nested, "code")
			}
		}
	}
	for _, key := range []string{"msg", "title"} {
		if message == "" {
			message = stringField(obj, key)
		}
	}
	if message == "" {
		if raw, ok := obj["errors"]; ok {
			var list []string
			if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
				message = list[0]
			}
		}
	}
	return message, code
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func intField(obj map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
