package protocol

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Common codec errors.
var (
	ErrInvalidMessage = errors.New("invalid message format")
	ErrUnknownCodec   = errors.New("unknown codec type")
)

// Codec handles message encoding/decoding.
type Codec interface {
	Encode(msg *Message) ([]byte, error)
	Decode(data []byte) (*Message, error)

	// Name is the value clients pass as the vsn query parameter.
	Name() string

	// Binary reports whether frames must be sent as binary.
	Binary() bool
}

// JSONCodec encodes messages as JSON objects. Useful when debugging.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Encode encodes a message to JSON.
func (c *JSONCodec) Encode(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Decode decodes JSON to a message.
func (c *JSONCodec) Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event == "" {
		return nil, ErrInvalidMessage
	}
	msg.Type = EventType(msg.Event)
	return &msg, nil
}

func (c *JSONCodec) Name() string { return "json" }
func (c *JSONCodec) Binary() bool { return false }

// MsgPackCodec encodes messages with MessagePack in binary frames.
type MsgPackCodec struct{}

// NewMsgPackCodec creates a new MsgPack codec.
func NewMsgPackCodec() *MsgPackCodec {
	return &MsgPackCodec{}
}

// Encode encodes a message to MsgPack.
func (c *MsgPackCodec) Encode(msg *Message) ([]byte, error) {
	return msgpack.Marshal(msg)
}

// Decode decodes MsgPack to a message. Nested maps decode as map[string]any.
func (c *MsgPackCodec) Decode(data []byte) (*Message, error) {
	var msg Message
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event == "" {
		return nil, ErrInvalidMessage
	}
	msg.Type = EventType(msg.Event)
	return &msg, nil
}

func (c *MsgPackCodec) Name() string { return "msgpack" }
func (c *MsgPackCodec) Binary() bool { return true }

// PhoenixCodec implements the Phoenix channel wire format:
// [join_ref, ref, topic, event, payload].
type PhoenixCodec struct{}

// NewPhoenixCodec creates a new Phoenix-compatible codec.
func NewPhoenixCodec() *PhoenixCodec {
	return &PhoenixCodec{}
}

// Encode encodes a message to Phoenix format. Empty refs encode as null.
func (c *PhoenixCodec) Encode(msg *Message) ([]byte, error) {
	payload := msg.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	tuple := []any{
		nullable(msg.JoinRef),
		nullable(msg.Ref),
		msg.Topic,
		msg.Event,
		payload,
	}
	return json.Marshal(tuple)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Decode decodes Phoenix format to a message.
func (c *PhoenixCodec) Decode(data []byte) (*Message, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return nil, err
	}
	if len(tuple) != 5 {
		return nil, ErrInvalidMessage
	}

	msg := &Message{}

	var joinRef *string
	if err := json.Unmarshal(tuple[0], &joinRef); err == nil && joinRef != nil {
		msg.JoinRef = *joinRef
	}

	var ref *string
	if err := json.Unmarshal(tuple[1], &ref); err == nil && ref != nil {
		msg.Ref = *ref
	}

	if err := json.Unmarshal(tuple[2], &msg.Topic); err != nil {
		return nil, ErrInvalidMessage
	}
	if err := json.Unmarshal(tuple[3], &msg.Event); err != nil || msg.Event == "" {
		return nil, ErrInvalidMessage
	}

	if err := json.Unmarshal(tuple[4], &msg.Payload); err != nil || msg.Payload == nil {
		msg.Payload = make(map[string]any)
	}

	msg.Type = EventType(msg.Event)
	return msg, nil
}

func (c *PhoenixCodec) Name() string { return "phoenix" }
func (c *PhoenixCodec) Binary() bool { return false }

// CodecRegistry maps codec names to codecs.
type CodecRegistry struct {
	codecs   map[string]Codec
	fallback Codec
	mu       sync.RWMutex
}

// NewCodecRegistry creates a registry with the JSON, MsgPack and Phoenix
// codecs, defaulting to Phoenix.
func NewCodecRegistry() *CodecRegistry {
	r := &CodecRegistry{
		codecs: make(map[string]Codec),
	}

	r.Register(NewJSONCodec())
	r.Register(NewMsgPackCodec())
	phoenix := NewPhoenixCodec()
	r.Register(phoenix)
	r.fallback = phoenix

	return r
}

// Register adds a codec to the registry.
func (r *CodecRegistry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[codec.Name()] = codec
}

// Get retrieves a codec by name.
func (r *CodecRegistry) Get(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	return c, ok
}

// Default returns the default codec.
func (r *CodecRegistry) Default() Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// SetDefault sets the default codec.
func (r *CodecRegistry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.codecs[name]
	if !ok {
		return ErrUnknownCodec
	}
	r.fallback = c
	return nil
}

// Negotiate returns the codec named by a client's vsn parameter, or the
// default when the name is empty or unknown.
func (r *CodecRegistry) Negotiate(vsn string) Codec {
	if vsn != "" {
		if c, ok := r.Get(vsn); ok {
			return c
		}
	}
	return r.Default()
}
