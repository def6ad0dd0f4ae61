package pwt_test

import (
	"strings"
	"testing"

	"github.com/Wind-318/baselib/pkg/pwt"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestNewHeaderDefaults(t *testing.T) {
	t.Parallel()
	h := pwt.NewHeader()
	require.Equal(t, "TOKEN", h.Typ())
	require.Empty(t, h.Kid())
	require.Empty(t, h.Pwk())
	require.Empty(t, h.X5u())
	require.Empty(t, h.Fields())
	require.Nil(t, h.Extension())
}

func TestSetTypLengthGuard(t *testing.T) {
	t.Parallel()
	h := pwt.NewHeader()
	h.SetTyp("CUSTOM")
	require.Equal(t, "CUSTOM", h.Typ())

	h.SetTyp(strings.Repeat("x", 256))
	require.Equal(t, "CUSTOM", h.Typ(), "oversized typ must be ignored")

	h.SetTyp(strings.Repeat("y", 255))
	require.Len(t, h.Typ(), 255)
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()
	ext, err := anypb.New(wrapperspb.String("extension payload"))
	require.NoError(t, err)

	h := pwt.NewHeader()
	h.SetTyp("TOKEN")
	h.SetKid("key-1")
	h.SetPwk("pwk-ref")
	h.SetX5u("https://example.com/cert")
	h.SetField("tenant", "acme")
	h.SetField("region", "eu")
	h.SetExtension(ext)

	raw, err := h.Encode()
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	decoded := pwt.NewHeader()
	require.True(t, decoded.Decode(raw))
	require.Equal(t, "TOKEN", decoded.Typ())
	require.Equal(t, "key-1", decoded.Kid())
	require.Equal(t, "pwk-ref", decoded.Pwk())
	require.Equal(t, "https://example.com/cert", decoded.X5u())
	require.Equal(t, map[string]string{"tenant": "acme", "region": "eu"}, decoded.Fields())
	require.NotNil(t, decoded.Extension())
	require.Equal(t, ext.GetTypeUrl(), decoded.Extension().GetTypeUrl())
	require.Equal(t, ext.GetValue(), decoded.Extension().GetValue())
}

func TestHeaderDecodeClearsExtension(t *testing.T) {
	t.Parallel()
	bare := pwt.NewHeader()
	bare.SetKid("bare")
	raw, err := bare.Encode()
	require.NoError(t, err)

	ext, err := anypb.New(wrapperspb.String("stale"))
	require.NoError(t, err)
	h := pwt.NewHeader()
	h.SetExtension(ext)

	require.True(t, h.Decode(raw))
	require.Equal(t, "bare", h.Kid())
	require.Nil(t, h.Extension(), "absent wire extension must clear the slot")
}

func TestHeaderDecodeOverwritesFields(t *testing.T) {
	t.Parallel()
	src := pwt.NewHeader()
	src.SetField("only", "this")
	raw, err := src.Encode()
	require.NoError(t, err)

	h := pwt.NewHeader()
	h.SetField("stale", "entry")
	require.True(t, h.Decode(raw))
	require.Equal(t, map[string]string{"only": "this"}, h.Fields(),
		"decode must replace custom fields, not merge")
}

func TestHeaderDecodeFailures(t *testing.T) {
	t.Parallel()
	h := pwt.NewHeader()
	h.SetKid("keep")

	require.False(t, h.Decode(nil))
	require.False(t, h.Decode([]byte{}))
	require.False(t, h.Decode([]byte{0xFF, 0x01, 0x02}))
	require.Equal(t, "keep", h.Kid(), "failed decode must leave the header untouched")
}

func TestHeaderClone(t *testing.T) {
	t.Parallel()
	ext, err := anypb.New(wrapperspb.String("ext"))
	require.NoError(t, err)

	h := pwt.NewHeader()
	h.SetKid("kid")
	h.SetField("a", "1")
	h.SetExtension(ext)

	c := h.Clone()
	require.Equal(t, h.Kid(), c.Kid())
	require.Equal(t, h.Fields(), c.Fields())

	c.SetKid("other")
	c.SetField("a", "2")
	require.Equal(t, "kid", h.Kid())
	require.Equal(t, "1", h.Fields()["a"])
}
