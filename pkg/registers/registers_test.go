package registers_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thanhpk/randstr"

	"github.com/promptpage/promptpay-daemon/pkg/registers"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{
			name:    "commitment_digest",
			payload: randstr.Bytes(32),
		},
		{
			name:    "single_byte",
			payload: []byte{0x7f},
		},
		{
			name:    "max_short_form",
			payload: randstr.Bytes(127),
		},
		{
			name:    "two_byte_length_one_byte_wide",
			payload: randstr.Bytes(200),
		},
		{
			name:    "two_byte_length_two_bytes_wide",
			payload: randstr.Bytes(1000),
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoded, err := registers.EncodeBytes(tt.payload)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(encoded, "0e"))

			decoded, err := registers.Decode(encoded)
			require.NoError(t, err)
			require.Equal(t, tt.payload, decoded)
		})
	}
}

func TestEncodeCommitmentLayout(t *testing.T) {
	payload := randstr.Bytes(32)

	encoded, err := registers.EncodeBytes(payload)
	require.NoError(t, err)

	// 0e tag, 0x20 length, then the 32 raw bytes
	require.Equal(t, "0e20"+hex.EncodeToString(payload), encoded)
}

func TestDecodeWithoutTypeTag(t *testing.T) {
	payload := []byte("12345")

	decoded, err := registers.Decode("05" + hex.EncodeToString(payload))
	require.NoError(t, err)
	require.Equal(t, payload, decoded)
}

func TestDecodeUTF8(t *testing.T) {
	encoded, err := registers.EncodeUTF8("42")
	require.NoError(t, err)

	decoded, err := registers.DecodeUTF8(encoded)
	require.NoError(t, err)
	require.Equal(t, "42", decoded)
}

func TestFailingDecode(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{
			name:  "not_hex",
			value: "zzzz",
		},
		{
			name:  "empty_after_tag",
			value: "0e",
		},
		{
			name:  "truncated_payload",
			value: "0e20ffff",
		},
		{
			name:  "unsupported_length_width",
			value: "0e83010101ff",
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := registers.Decode(tt.value)
			require.Error(t, err)
		})
	}
}

func TestFailingEncode(t *testing.T) {
	_, err := registers.EncodeBytes(make([]byte, 0x10000))
	require.EqualError(t, err, registers.ErrPayloadTooLarge.Error())
}
