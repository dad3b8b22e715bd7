package ergo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeRegisters(t *testing.T) {
	// v1 explorer wraps register values, node endpoints return plain strings
	raw := map[string]json.RawMessage{
		"R4": json.RawMessage(`{"serializedValue":"0e20aa","sigmaType":"Coll[SByte]"}`),
		"R5": json.RawMessage(`"0e0135"`),
	}

	registers := decodeRegisters(raw)
	require.Equal(t, "0e20aa", registers["R4"])
	require.Equal(t, "0e0135", registers["R5"])

	require.Nil(t, decodeRegisters(nil))
}

func TestTxPayloadToTransaction(t *testing.T) {
	payload := []byte(`{
		"id": "deadbeef",
		"inclusionHeight": 1000,
		"numConfirmations": 3,
		"outputs": [
			{
				"boxId": "box0",
				"address": "9addr",
				"value": 5000000,
				"index": 0,
				"additionalRegisters": {
					"R4": {"serializedValue": "0e20aa"}
				}
			}
		]
	}`)

	var tx txPayload
	require.NoError(t, json.Unmarshal(payload, &tx))

	parsed := tx.toTransaction()
	require.Equal(t, "deadbeef", parsed.Hash())
	require.Equal(t, int64(3), parsed.Confirmations())
	require.Len(t, parsed.Outputs(), 1)
	require.Equal(t, uint64(5000000), parsed.Outputs()[0].Value)
	require.Equal(t, "0e20aa", parsed.Outputs()[0].AdditionalRegisters["R4"])
}
