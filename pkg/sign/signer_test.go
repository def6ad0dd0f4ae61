package sign_test

import (
	"testing"

	"github.com/Wind-318/baselib/pkg/sign"

	"github.com/stretchr/testify/require"
)

func TestNewAESGeneratesIdentity(t *testing.T) {
	t.Parallel()
	signer, err := sign.NewAES()
	require.NoError(t, err)

	require.Len(t, signer.Key(), sign.DefaultKeySize)
	require.Len(t, signer.IV(), sign.DefaultIVSize)
	require.Len(t, signer.Salt(), sign.DefaultSaltSize)
}

func TestNewAESExplicitSizes(t *testing.T) {
	t.Parallel()
	signer, err := sign.NewAES(
		sign.WithKeySize(32),
		sign.WithIVSize(16),
		sign.WithSaltSize(8),
	)
	require.NoError(t, err)
	require.Len(t, signer.Key(), 32)
	require.Len(t, signer.IV(), 16)
	require.Len(t, signer.Salt(), 8)

	_, err = sign.NewAES(sign.WithKeySize(0))
	require.ErrorIs(t, err, sign.ErrInvalidSize)
}

func TestSignDeterministic(t *testing.T) {
	t.Parallel()
	key := []byte("0123456789abcdef0123456789abcdef")
	salt := []byte("pepper")

	a, err := sign.NewAES(sign.WithKey(key), sign.WithSalt(salt))
	require.NoError(t, err)
	b, err := sign.NewAES(sign.WithKey(key), sign.WithSalt(salt))
	require.NoError(t, err)

	data := []byte("some token material")
	sig1, err := a.Sign(data)
	require.NoError(t, err)
	sig2, err := b.Sign(data)
	require.NoError(t, err)
	require.Equal(t, sig1, sig2, "same identity material must sign identically")

	other, err := a.Sign([]byte("different material"))
	require.NoError(t, err)
	require.NotEqual(t, sig1, other)
}

func TestSignDiffersPerKey(t *testing.T) {
	t.Parallel()
	a, err := sign.NewAES()
	require.NoError(t, err)
	b, err := sign.NewAES()
	require.NoError(t, err)

	data := []byte("payload")
	sigA, err := a.Sign(data)
	require.NoError(t, err)
	sigB, err := b.Sign(data)
	require.NoError(t, err)
	require.NotEqual(t, sigA, sigB)
}

func TestSignErrors(t *testing.T) {
	t.Parallel()
	signer, err := sign.NewAES()
	require.NoError(t, err)

	_, err = signer.Sign(nil)
	require.ErrorIs(t, err, sign.ErrEmptyData)

	signer.SetKey(nil)
	_, err = signer.Sign([]byte("data"))
	require.ErrorIs(t, err, sign.ErrEmptyKey)
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()
	orig, err := sign.NewAES()
	require.NoError(t, err)

	clone := orig.Clone()
	require.Equal(t, orig.Key(), clone.Key())
	require.Equal(t, orig.IV(), clone.IV())
	require.Equal(t, orig.Salt(), clone.Salt())

	data := []byte("data")
	origSig, err := orig.Sign(data)
	require.NoError(t, err)
	cloneSig, err := clone.Sign(data)
	require.NoError(t, err)
	require.Equal(t, origSig, cloneSig)

	// Mutating the clone must not leak into the original.
	clone.SetKey([]byte("a completely different key"))
	afterSig, err := orig.Sign(data)
	require.NoError(t, err)
	require.Equal(t, origSig, afterSig)
}

func TestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()
	signer, err := sign.NewAES()
	require.NoError(t, err)

	key := signer.Key()
	key[0] ^= 0xFF
	require.NotEqual(t, key[0], signer.Key()[0])

	seed := []byte("seed")
	signer.SetSalt(seed)
	seed[0] = 'X'
	require.Equal(t, byte('s'), signer.Salt()[0])
}

func TestGenerateRandom(t *testing.T) {
	t.Parallel()
	b, err := sign.GenerateRandom(64)
	require.NoError(t, err)
	require.Len(t, b, 64)

	other, err := sign.GenerateRandom(64)
	require.NoError(t, err)
	require.NotEqual(t, b, other)

	_, err = sign.GenerateRandom(0)
	require.ErrorIs(t, err, sign.ErrInvalidSize)
	_, err = sign.GenerateRandom(-1)
	require.ErrorIs(t, err, sign.ErrInvalidSize)
}
