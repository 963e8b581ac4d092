// Package protocol defines the wire messages exchanged between the browser
// runtime and the server, and the codecs that frame them.
package protocol

import (
	"time"
)

// MessageType classifies a message by its event.
type MessageType uint8

const (
	MsgJoin MessageType = iota
	MsgLeave
	MsgEvent
	MsgReply
	MsgDiff
	MsgError
	MsgHeartbeat
	MsgCommand
)

// String returns a string representation of the message type.
func (mt MessageType) String() string {
	switch mt {
	case MsgJoin:
		return "join"
	case MsgLeave:
		return "leave"
	case MsgEvent:
		return "event"
	case MsgReply:
		return "reply"
	case MsgDiff:
		return "diff"
	case MsgError:
		return "error"
	case MsgHeartbeat:
		return "heartbeat"
	case MsgCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Protocol event names.
const (
	EventJoin      = "phx_join"
	EventLeave     = "phx_leave"
	EventReply     = "phx_reply"
	EventError     = "phx_error"
	EventHeartbeat = "heartbeat"
	EventDiff      = "diff"
	EventCommand   = "js"
)

// Message is a protocol message exchanged between client and server.
type Message struct {
	// Type is derived from Event on decode.
	Type MessageType `json:"t" msgpack:"t"`

	// Ref correlates a reply with its request.
	Ref string `json:"ref,omitempty" msgpack:"ref,omitempty"`

	// Topic is the channel, "lv:<socket id>" for live views.
	Topic string `json:"topic" msgpack:"topic"`

	// Event is the event name, e.g. "navigate" or "phx_reply".
	Event string `json:"event,omitempty" msgpack:"event,omitempty"`

	Payload map[string]any `json:"payload,omitempty" msgpack:"payload,omitempty"`

	// Timestamp in Unix milliseconds.
	Timestamp int64 `json:"ts,omitempty" msgpack:"ts,omitempty"`

	JoinRef string `json:"join_ref,omitempty" msgpack:"join_ref,omitempty"`
}

// NewMessage creates a message with an empty payload.
func NewMessage(topic, event string) *Message {
	return &Message{
		Type:      EventType(event),
		Topic:     topic,
		Event:     event,
		Payload:   make(map[string]any),
		Timestamp: time.Now().UnixMilli(),
	}
}

// WithRef adds a reference ID to the message.
func (m *Message) WithRef(ref string) *Message {
	m.Ref = ref
	return m
}

// WithJoinRef sets the join reference.
func (m *Message) WithJoinRef(joinRef string) *Message {
	m.JoinRef = joinRef
	return m
}

// WithPayload sets the message payload.
func (m *Message) WithPayload(payload map[string]any) *Message {
	m.Payload = payload
	return m
}

// GetPayloadString retrieves a string value from the payload.
func (m *Message) GetPayloadString(key string) string {
	if v, ok := m.Payload[key].(string); ok {
		return v
	}
	return ""
}

// Number converts a decoded numeric value to float64. JSON numbers decode
// as float64 and msgpack integers as int64 or uint64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ReplyMessage creates a reply to the message with the given ref.
func ReplyMessage(joinRef, ref, topic, status string, response map[string]any) *Message {
	if response == nil {
		response = map[string]any{}
	}
	return NewMessage(topic, EventReply).
		WithJoinRef(joinRef).
		WithRef(ref).
		WithPayload(map[string]any{
			"status":   status,
			"response": response,
		})
}

// OkReply creates a successful reply.
func OkReply(joinRef, ref, topic string, response map[string]any) *Message {
	return ReplyMessage(joinRef, ref, topic, "ok", response)
}

// ErrorReply creates an error reply.
func ErrorReply(joinRef, ref, topic, reason string) *Message {
	return ReplyMessage(joinRef, ref, topic, "error", map[string]any{"reason": reason})
}

// PushMessage creates a server push on a joined topic.
func PushMessage(joinRef, topic, event string, payload map[string]any) *Message {
	return NewMessage(topic, event).WithJoinRef(joinRef).WithPayload(payload)
}

// EventType maps an event name to its message type.
func EventType(event string) MessageType {
	switch event {
	case EventJoin:
		return MsgJoin
	case EventLeave:
		return MsgLeave
	case EventReply:
		return MsgReply
	case EventError:
		return MsgError
	case EventHeartbeat:
		return MsgHeartbeat
	case EventDiff:
		return MsgDiff
	case EventCommand:
		return MsgCommand
	default:
		return MsgEvent
	}
}
