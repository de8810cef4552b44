package fsr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedMessage reports an inbound frame that is not an
// [action, payload] array.
var ErrMalformedMessage = errors.New("malformed message")

// Encode builds the outbound wire form: a JSON array whose first element is
// the action tag followed by the positional arguments.
func Encode(action string, args ...any) ([]byte, error) {
	if action == "" {
		return nil, fmt.Errorf("encode message: empty action")
	}
	frame := make([]any, 0, len(args)+1)
	frame = append(frame, action)
	frame = append(frame, args...)
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", action, err)
	}
	return data, nil
}

// Decode splits an inbound frame into its action tag and raw payload. The
// payload is nil when the frame carries only a tag.
func Decode(data []byte) (string, json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("%w: empty array", ErrMalformedMessage)
	}
	var action string
	if err := json.Unmarshal(parts[0], &action); err != nil {
		return "", nil, fmt.Errorf("%w: action tag: %v", ErrMalformedMessage, err)
	}
	if action == "" {
		return "", nil, fmt.Errorf("%w: empty action tag", ErrMalformedMessage)
	}
	if len(parts) < 2 {
		return action, nil, nil
	}
	return action, parts[1], nil
}
