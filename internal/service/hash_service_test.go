package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	hash, err := svc.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err := svc.Verify("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2HashService_SaltedPerHash(t *testing.T) {
	svc := NewArgon2HashService()

	a, err := svc.Hash("pw")
	require.NoError(t, err)
	b, err := svc.Hash("pw")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestArgon2HashService_VerifyUsesStoredParams(t *testing.T) {
	cheap := &Argon2HashService{params: argon2Params{memory: 8 * 1024, time: 2, threads: 1, keyLen: 16}}
	hash, err := cheap.Hash("pw")
	require.NoError(t, err)

	ok, err := NewArgon2HashService().Verify("pw", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2HashService_MalformedHash(t *testing.T) {
	svc := NewArgon2HashService()

	for _, bad := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	} {
		_, err := svc.Verify("pw", bad)
		assert.Error(t, err, bad)
	}
}
