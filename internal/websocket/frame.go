package websocket

import (
	"encoding/json"
	"unicode/utf8"
)

// Frame is the inbound envelope. Every field is optional and defaults to "".
type Frame struct {
	RoomID   string
	RoomName string
	Text     string
}

// DecodeFrame parses a text payload as a JSON object. It reports false when
// the payload is not valid UTF-8 or not an object; fields that are absent or not strings are
// left empty.
func DecodeFrame(data []byte) (Frame, bool) {
	if !utf8.Valid(data) {
		return Frame{}, false
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return Frame{}, false
	}

	return Frame{
		RoomID:   stringField(obj, "room_id"),
		RoomName: stringField(obj, "room_name"),
		Text:     stringField(obj, "text"),
	}, true
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
