package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Hash(t *testing.T) {
	// SHA-256 of the empty string.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(nil))
	assert.Equal(t, Hash(nil), Hash([]byte{}))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Hash([]byte("hello")))
}

// RFC 4231 test case 2.
func Test_HmacSHA256(t *testing.T) {
	mac, err := HmacSHA256([]byte("Jefe"), "what do ya want for nothing?")
	require.NoError(t, err)
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", hex.EncodeToString(mac))
}

func Test_HmacChain(t *testing.T) {
	chained, err := HmacChain([]byte("seed"), "one", "two", "three")
	require.NoError(t, err)

	manual := []byte("seed")
	for _, step := range []string{"one", "two", "three"} {
		manual, err = HmacSHA256(manual, step)
		require.NoError(t, err)
	}
	assert.Equal(t, manual, chained)
}

func Test_HmacChain_NoData(t *testing.T) {
	out, err := HmacChain([]byte("seed"))
	require.NoError(t, err)
	assert.Equal(t, []byte("seed"), out)
}
