package util

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSealKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := rand.Read(k)
	require.NoError(t, err)
	return k
}

func TestSealOpenRoundtrip(t *testing.T) {
	key := testSealKey(t)
	plaintext := []byte(`{"ABCD-1234-WXYZ": {"product_id": "pro"}}`)

	boxed, err := Seal(key, plaintext)
	require.NoError(t, err)
	assert.NotContains(t, string(boxed), "product_id")

	opened, err := Open(key, boxed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestOpenRejectsTamperedData(t *testing.T) {
	key := testSealKey(t)

	boxed, err := Seal(key, []byte("payload"))
	require.NoError(t, err)

	boxed[len(boxed)-1] ^= 0xff
	_, err = Open(key, boxed)
	assert.Error(t, err)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	boxed, err := Seal(testSealKey(t), []byte("payload"))
	require.NoError(t, err)

	_, err = Open(testSealKey(t), boxed)
	assert.Error(t, err)
}

func TestSealKeyFromHex(t *testing.T) {
	key := testSealKey(t)

	decoded, err := SealKeyFromHex(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = SealKeyFromHex("not-hex")
	assert.Error(t, err)

	_, err = SealKeyFromHex("abcd") // too short
	assert.Error(t, err)
}
