package protocol

import jsoniter "github.com/json-iterator/go"

// Serializer defines the contract for serializing and deserializing payloads.
// This allows adapters to choose their preferred format while interacting with
// the trading core.
type Serializer interface {
	// Marshal serializes a Go struct (e.g. PlaceOrderRequest) into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes bytes into a Go struct.
	// v must be a pointer to the target struct.
	Unmarshal(data []byte, v any) error
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultJSONSerializer implements Serializer using JSON encoding.
type DefaultJSONSerializer struct{}

// Marshal serializes v into JSON bytes.
func (s *DefaultJSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal deserializes JSON bytes into v.
func (s *DefaultJSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
