package wire_test

import (
	"testing"

	"github.com/alovak/cardflow-gateway/wire"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestXMLCodec(t *testing.T) {
	codec := wire.XML()
	require.Equal(t, "application/xml", codec.ContentType())

	v, err := codec.Decode([]byte(`<payment_method>
  <token>1rpKvP8zOUhj4Y9EDrIoIYQzzD5</token>
  <first_name>Joey</first_name>
  <storage_state>retained</storage_state>
  <errors></errors>
</payment_method>`))
	require.NoError(t, err)

	pm, err := wire.ExtractRoot()(v)
	require.NoError(t, err)

	rec := pm.(*wire.Record)
	require.Equal(t, []string{"token", "firstName", "storageState", "errors"}, rec.Keys())
	require.Equal(t, "Joey", rec.String("firstName"))

	_, err = codec.Decode([]byte(`<broken>`))
	require.ErrorIs(t, err, wire.ErrMalformedWire)
}

// Property: decoding an encoded mapping of scalars gives back the same keys
// and values.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	codec := wire.XML()

	properties.Property("decode(encode(fields)) restores fields", prop.ForAll(
		func(keys []string, values []string) bool {
			fields := make(map[string]any)
			for i := 0; i < len(keys) && i < len(values); i++ {
				// lowerCamel keys survive the casing round trip
				fields["k"+keys[i]] = values[i]
			}
			if len(fields) == 0 {
				return true // an empty root decodes to an empty string
			}

			body, err := codec.Encode("payload", fields)
			if err != nil {
				return false
			}
			v, err := codec.Decode(body)
			if err != nil {
				return false
			}
			got, err := wire.ExtractRoot("payload")(v)
			if err != nil {
				return false
			}
			rec, ok := got.(*wire.Record)
			if !ok || rec.Len() != len(fields) {
				return false
			}
			for k, want := range fields {
				if rec.String(k) != want {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
