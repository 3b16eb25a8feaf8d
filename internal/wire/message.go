// Package wire implements the framing codec of the mascara protocol engine:
// the JSON-RPC 2.0 positional-only message shapes, the Framer that
// serializes them onto the wire, and the Deframer that recovers them from a
// byte stream that may arrive in arbitrary chunks.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind distinguishes the four message variants the profile allows.
type Kind int

const (
	KindRequest Kind = iota
	KindSuccess
	KindError
	KindNotification
)

// ErrorObject is the JSON-RPC {code, message} error shape.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// raw is the shape used to marshal any message onto the wire. Only the
// fields relevant to a message's Kind are populated; the rest are omitted
// via `omitempty` so round-tripping never emits spurious fields.
type raw struct {
	ID     *string       `json:"id,omitempty"`
	Method string        `json:"method,omitempty"`
	Params []interface{} `json:"params,omitempty"`
	Result []interface{} `json:"result,omitempty"`
	Error  *ErrorObject  `json:"error,omitempty"`
}

// rawNullID is the marshaling shape for an error response whose id is
// explicitly null, which
// `omitempty` on a *string cannot express since it treats nil and "absent"
// identically.
type rawNullID struct {
	ID     interface{}  `json:"id"`
	Error  *ErrorObject `json:"error,omitempty"`
}

// Message is a decoded JSON-RPC frame in this profile: exactly one of
// Request/Success/Error/Notification semantics applies, selected by Kind.
// ID is a pointer so a "null id" (an error response unassociable with any
// request) is distinguishable from "no id field" (notifications).
type Message struct {
	Kind   Kind
	ID     *string
	Method string
	Params []interface{}
	Result []interface{}
	Error  *ErrorObject
}

// NewRequest builds a request message with positional params.
func NewRequest(id, method string, params []interface{}) Message {
	return Message{Kind: KindRequest, ID: &id, Method: method, Params: params}
}

// NewSuccess builds a success response carrying a positional result array.
func NewSuccess(id string, result []interface{}) Message {
	return Message{Kind: KindSuccess, ID: &id, Result: result}
}

// NewError builds an error response. id may be nil when the error cannot be
// correlated to any request.
func NewError(id *string, code int, message string) Message {
	return Message{Kind: KindError, ID: id, Error: &ErrorObject{Code: code, Message: message}}
}

// NewNotification builds a notification: no id, positional params.
func NewNotification(method string, params []interface{}) Message {
	return Message{Kind: KindNotification, Method: method, Params: params}
}

// MarshalJSON renders a Message to its wire JSON object. The encoding never
// embeds a raw CRLF; callers that need the full frame (JSON + terminator)
// use Framer, not this method directly.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.Kind == KindError && m.ID == nil {
		return json.Marshal(rawNullID{ID: nil, Error: m.Error})
	}

	r := raw{ID: m.ID, Method: m.Method}
	switch m.Kind {
	case KindRequest:
		r.Params = m.Params
		if r.Params == nil {
			r.Params = []interface{}{}
		}
	case KindSuccess:
		result := m.Result
		if result == nil {
			result = []interface{}{}
		}
		// "result" is required even when empty, so it bypasses raw's
		// omitempty, which would drop an empty array.
		return json.Marshal(struct {
			ID     *string       `json:"id"`
			Result []interface{} `json:"result"`
		}{ID: m.ID, Result: result})
	case KindError:
		r.Error = m.Error
	case KindNotification:
		r.Params = m.Params
		if r.Params == nil {
			r.Params = []interface{}{}
		}
	default:
		return nil, fmt.Errorf("wire: unknown message kind %d", m.Kind)
	}
	return json.Marshal(r)
}

// Parse decodes one JSON object into a Message, classifying it into one of
// the four required-field variants. Any shape that doesn't match one of
// the four (e.g. object-shaped params/result, or a request with no
// method) is a malformed frame.
func Parse(data []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Message{}, fmt.Errorf("wire: %w: %v", errMalformed, err)
	}

	idField, hasID := fields["id"]

	var id *string
	if hasID {
		var s *string
		if err := json.Unmarshal(idField, &s); err == nil {
			id = s
		}
		// a JSON null "id" decodes to a nil *string above, leaving
		// id == nil while hasID stays true: exactly the "null but
		// present" shape used for unassociable error responses.
	}

	var method string
	if m, ok := fields["method"]; ok {
		if err := json.Unmarshal(m, &method); err != nil {
			return Message{}, fmt.Errorf("wire: %w: method not a string", errMalformed)
		}
	}

	params, paramsOK := decodeArray(fields["params"])
	result, resultOK := decodeArray(fields["result"])
	_, hasResult := fields["result"]

	var errObj *ErrorObject
	if e, ok := fields["error"]; ok {
		errObj = &ErrorObject{}
		if err := json.Unmarshal(e, errObj); err != nil {
			return Message{}, fmt.Errorf("wire: %w: malformed error object", errMalformed)
		}
	}

	switch {
	case hasID && method != "":
		if !paramsOK {
			return Message{}, fmt.Errorf("wire: %w: params must be a positional array", errMalformed)
		}
		return Message{Kind: KindRequest, ID: id, Method: method, Params: params}, nil
	case hasID && errObj != nil:
		return Message{Kind: KindError, ID: id, Error: errObj}, nil
	case hasID && hasResult && resultOK:
		return Message{Kind: KindSuccess, ID: id, Result: result}, nil
	case !hasID && method != "":
		if !paramsOK {
			return Message{}, fmt.Errorf("wire: %w: params must be a positional array", errMalformed)
		}
		return Message{Kind: KindNotification, Method: method, Params: params}, nil
	default:
		return Message{}, fmt.Errorf("wire: %w: unrecognized message shape", errMalformed)
	}
}

// decodeArray reports whether raw is absent (ok=true, nil slice — the
// field simply wasn't sent) or decodes cleanly as a JSON array. An
// object-shaped params/result is a protocol violation under this
// positional-only profile and reports ok=false.
func decodeArray(raw json.RawMessage) ([]interface{}, bool) {
	if raw == nil {
		return nil, true
	}
	var arr []interface{}
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	return arr, true
}

var errMalformed = errors.New("malformed frame")

// IsMalformed reports whether err originated from a Parse failure.
func IsMalformed(err error) bool {
	return errors.Is(err, errMalformed)
}
