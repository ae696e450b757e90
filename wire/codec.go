// Package wire converts between the attributed markup used on the gateway
// wire and host values.
//
// Decoding is two passes: Decode coerces the tree by its type attributes and
// CamelizeKeys renames every key. Encoding merges flat field mappings, turns
// the keys back into lower_snake and wraps them in a root element.
package wire

import "bytes"

// Codec provides content-type aware request and response bodies.
type Codec interface {
	// ContentType returns the MIME type for this codec.
	ContentType() string

	// Encode builds a request body from field mappings under root.
	Encode(root string, fields ...map[string]any) ([]byte, error)

	// Decode parses a response body into host values with camelized keys.
	Decode(data []byte) (any, error)
}

type xmlCodec struct{}

// XML returns the markup codec used by the gateway API.
func XML() Codec {
	return xmlCodec{}
}

func (xmlCodec) ContentType() string {
	return "application/xml"
}

func (xmlCodec) Encode(root string, fields ...map[string]any) ([]byte, error) {
	return Encode(root, fields...)
}

func (xmlCodec) Decode(data []byte) (any, error) {
	tree, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	v, err := Decode(tree)
	if err != nil {
		return nil, err
	}
	return CamelizeKeys(v), nil
}
