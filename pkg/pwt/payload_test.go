package pwt_test

import (
	"testing"
	"time"

	"github.com/Wind-318/baselib/pkg/pwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestNewPayloadDefaults(t *testing.T) {
	t.Parallel()
	p, err := pwt.NewPayload("iss", "sub", "aud")
	require.NoError(t, err)

	require.Equal(t, "iss", p.Issuer())
	require.Equal(t, "sub", p.Subject())
	require.Equal(t, "aud", p.Audience())
	require.NotEmpty(t, p.Pbi())

	now := time.Now()
	require.WithinDuration(t, now, p.IssuedAt(), time.Second)
	require.WithinDuration(t, now, p.NotBefore(), time.Second)
	require.WithinDuration(t, now.Add(time.Hour), p.ExpiresAt(), time.Second)
}

func TestNewPayloadInvalidWindow(t *testing.T) {
	t.Parallel()
	// Expiry before issuance.
	_, err := pwt.NewPayload("i", "s", "a",
		pwt.WithExpiresIn(time.Minute),
		pwt.WithIssuedIn(time.Hour),
	)
	require.ErrorIs(t, err, pwt.ErrInvalidTimeWindow)

	// Not-before after expiry.
	_, err = pwt.NewPayload("i", "s", "a",
		pwt.WithExpiresIn(time.Minute),
		pwt.WithNotBeforeIn(time.Hour),
	)
	require.ErrorIs(t, err, pwt.ErrInvalidTimeWindow)

	// Boundary: exp == iat and nbf == exp are allowed.
	_, err = pwt.NewPayload("i", "s", "a",
		pwt.WithExpiresIn(time.Hour),
		pwt.WithNotBeforeIn(time.Hour),
		pwt.WithIssuedIn(time.Hour),
	)
	require.NoError(t, err)
}

func TestAudienceNormalization(t *testing.T) {
	t.Parallel()
	p, err := pwt.NewPayload("", "", "")
	require.NoError(t, err)

	require.Empty(t, p.Audience())
	require.Nil(t, p.Audiences())

	p.SetAudience("a")
	require.Equal(t, "a", p.Audience())
	require.Equal(t, []string{"a"}, p.Audiences())

	p.AddAudience("b")
	require.Equal(t, "a", p.Audience(), "first value stays first after promotion")
	require.Equal(t, []string{"a", "b"}, p.Audiences())

	// Repeated adds append without deduplication.
	p.AddAudience("b")
	require.Equal(t, []string{"a", "b", "b"}, p.Audiences())

	p.AddAudiences([]string{"c", "d"})
	require.Equal(t, []string{"a", "b", "b", "c", "d"}, p.Audiences())

	// SetAudience resets back to a single value.
	p.SetAudience("solo")
	require.Equal(t, []string{"solo"}, p.Audiences())
}

func TestAddAudienceOnEmptySingle(t *testing.T) {
	t.Parallel()
	p, err := pwt.NewPayload("", "", "")
	require.NoError(t, err)

	p.AddAudience("first")
	require.Equal(t, "first", p.Audience())
	require.Equal(t, []string{"first"}, p.Audiences())
}

func TestIsExpired(t *testing.T) {
	t.Parallel()
	p, err := pwt.NewPayload("", "", "")
	require.NoError(t, err)

	p.SetExpiresAt(time.Now().Add(-time.Second))
	require.True(t, p.IsExpired())

	p.SetExpiresAt(time.Now().Add(time.Hour))
	require.False(t, p.IsExpired())

	// Unset expiry never expires.
	p.SetExpiresAt(time.Time{})
	require.False(t, p.IsExpired())
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()
	ext, err := anypb.New(wrapperspb.String("payload extension"))
	require.NoError(t, err)

	exp := time.Now().Add(2 * time.Hour).UTC()
	p, err := pwt.NewPayload("issuer", "subject", "audience",
		pwt.WithExtension(ext))
	require.NoError(t, err)
	p.SetExpiresAt(exp)
	p.SetField("role", "admin")
	pbi := p.Pbi()

	raw, err := p.Encode()
	require.NoError(t, err)

	decoded, err := pwt.NewPayload("", "", "")
	require.NoError(t, err)
	require.True(t, decoded.Decode(raw))

	assert.Equal(t, "issuer", decoded.Issuer())
	assert.Equal(t, "subject", decoded.Subject())
	assert.Equal(t, "audience", decoded.Audience())
	assert.Equal(t, []string{"audience"}, decoded.Audiences())
	assert.Equal(t, map[string]string{"role": "admin"}, decoded.Fields())
	assert.Equal(t, pbi, decoded.Pbi(), "correlation id is carried verbatim")
	assert.True(t, exp.Equal(decoded.ExpiresAt()))
	require.NotNil(t, decoded.Extension())
	assert.Equal(t, ext.GetValue(), decoded.Extension().GetValue())
}

func TestPayloadMultiAudienceRoundTrip(t *testing.T) {
	t.Parallel()
	p, err := pwt.NewPayload("i", "s", "ignored",
		pwt.WithAudiences([]string{"a", "b", "c"}))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, p.Audiences())

	raw, err := p.Encode()
	require.NoError(t, err)

	decoded, err := pwt.NewPayload("", "", "")
	require.NoError(t, err)
	require.True(t, decoded.Decode(raw))
	require.Equal(t, []string{"a", "b", "c"}, decoded.Audiences())
	require.Equal(t, "a", decoded.Audience())
}

func TestPayloadDecodeUnsetTimestamps(t *testing.T) {
	t.Parallel()
	p, err := pwt.NewPayload("i", "s", "a")
	require.NoError(t, err)
	p.SetExpiresAt(time.Time{})
	p.SetNotBefore(time.Time{})
	p.SetIssuedAt(time.Time{})

	raw, err := p.Encode()
	require.NoError(t, err)

	decoded, err := pwt.NewPayload("", "", "")
	require.NoError(t, err)
	require.True(t, decoded.Decode(raw))
	require.True(t, decoded.ExpiresAt().IsZero())
	require.True(t, decoded.NotBefore().IsZero())
	require.True(t, decoded.IssuedAt().IsZero())
	require.False(t, decoded.IsExpired())
}

func TestPayloadDecodeFailures(t *testing.T) {
	t.Parallel()
	p, err := pwt.NewPayload("keep", "", "")
	require.NoError(t, err)
	pbi := p.Pbi()

	require.False(t, p.Decode(nil))
	require.False(t, p.Decode([]byte{0xFF}))
	require.Equal(t, "keep", p.Issuer())
	require.Equal(t, pbi, p.Pbi(), "failed decode must leave the payload untouched")
}

func TestPayloadCloneRegeneratesPbi(t *testing.T) {
	t.Parallel()
	p, err := pwt.NewPayload("iss", "sub", "aud")
	require.NoError(t, err)
	p.SetField("k", "v")

	c := p.Clone()
	require.Equal(t, p.Issuer(), c.Issuer())
	require.Equal(t, p.Audiences(), c.Audiences())
	require.Equal(t, p.Fields(), c.Fields())
	require.NotEqual(t, p.Pbi(), c.Pbi(), "clone gets a fresh correlation id")

	c.SetField("k", "other")
	require.Equal(t, "v", p.Fields()["k"])
}
