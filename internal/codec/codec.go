package codec

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Names of the supported wire formats
const (
	NameJSON    = "json"
	NameMsgPack = "msgpack"
)

// Codec encodes snapshots for agents and decodes their responses
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error

	// Binary reports whether encoded messages must be sent as binary frames
	Binary() bool
}

// JSON is the default, human-readable wire format
type JSON struct{}

// Ensure JSON implements Codec
var _ Codec = JSON{}

func (JSON) Name() string { return NameJSON }

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSON) Binary() bool { return false }

// MsgPack is a compact binary wire format for agents that support it
type MsgPack struct{}

// Ensure MsgPack implements Codec
var _ Codec = MsgPack{}

func (MsgPack) Name() string { return NameMsgPack }

func (MsgPack) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgPack) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

func (MsgPack) Binary() bool { return true }

// ByName returns the codec with the given name. An empty name selects JSON.
func ByName(name string) (Codec, error) {
	switch name {
	case "", NameJSON:
		return JSON{}, nil
	case NameMsgPack:
		return MsgPack{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (valid: %s, %s)", name, NameJSON, NameMsgPack)
	}
}
