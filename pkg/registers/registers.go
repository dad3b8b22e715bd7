package registers

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Registers carry the auxiliary metadata binding a payment transaction to its
// intent: the commitment digest and the composition id on the platform
// output, the item-id list on each creator output. Values are serialized as
// sigma SColl[SByte] constants: a one byte type tag followed by a length
// prefix and the raw payload.

// TypeTagCollByte is the serialization tag of a byte collection constant.
const TypeTagCollByte = 0x0e

const maxPayloadSize = 0xffff

var (
	// ErrRegisterTooShort is thrown when decoding a register whose payload is
	// shorter than its declared length.
	ErrRegisterTooShort = errors.New("register payload shorter than declared length")
	// ErrUnsupportedLength is thrown when a register declares a length
	// encoding wider than the two byte form.
	ErrUnsupportedLength = errors.New("unsupported register length encoding")
	// ErrPayloadTooLarge ...
	ErrPayloadTooLarge = errors.New("register payload exceeds maximum size")
)

// EncodeBytes serializes the given payload as a hex-encoded SColl[SByte]
// register value. Payloads up to 127 bytes use the single byte length prefix,
// longer ones the two byte form.
func EncodeBytes(payload []byte) (string, error) {
	if len(payload) > maxPayloadSize {
		return "", ErrPayloadTooLarge
	}

	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, TypeTagCollByte)
	switch {
	case len(payload) <= 0x7f:
		buf = append(buf, byte(len(payload)))
	case len(payload) <= 0xff:
		buf = append(buf, 0x81, byte(len(payload)))
	default:
		buf = append(buf, 0x82, byte(len(payload)>>8), byte(len(payload)))
	}
	buf = append(buf, payload...)
	return hex.EncodeToString(buf), nil
}

// EncodeUTF8 serializes the UTF-8 bytes of the given string.
func EncodeUTF8(value string) (string, error) {
	return EncodeBytes([]byte(value))
}

// Decode strips the type tag and the length prefix from a hex-encoded
// register value and returns the raw payload. Both the single byte and the
// two byte length encodings are accepted, and the type tag is optional since
// some explorer API paths return the rendered value without it.
func Decode(value string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("invalid register hex: %w", err)
	}
	if len(raw) > 0 && raw[0] == TypeTagCollByte {
		raw = raw[1:]
	}
	if len(raw) <= 0 {
		return nil, ErrRegisterTooShort
	}

	length := int(raw[0])
	raw = raw[1:]
	if length > 0x7f {
		widthBytes := length - 0x80
		if widthBytes < 1 || widthBytes > 2 || len(raw) < widthBytes {
			return nil, ErrUnsupportedLength
		}
		length = 0
		for i := 0; i < widthBytes; i++ {
			length = length<<8 | int(raw[i])
		}
		raw = raw[widthBytes:]
	}

	if len(raw) < length {
		return nil, ErrRegisterTooShort
	}
	return raw[:length], nil
}

// DecodeUTF8 decodes the register payload and interprets it as UTF-8.
func DecodeUTF8(value string) (string, error) {
	payload, err := Decode(value)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
