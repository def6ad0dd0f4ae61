package pwt

import (
	"errors"

	"github.com/Wind-318/baselib/pkg/cmap"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

// DefaultTyp is the token type a fresh header carries.
const DefaultTyp = "TOKEN"

// maxTypLen bounds the typ claim; longer values are ignored by SetTyp.
const maxTypLen = 255

// Header holds the token's descriptive claims: the token type, key id,
// public web key reference, X.509 URL, free-form string fields and an
// optional typed extension message.
type Header struct {
	typ       string
	kid       string
	pwk       string
	x5u       string
	fields    *cmap.Map[string, string]
	extension *anypb.Any
}

// NewHeader creates a header with the default token type and no claims.
func NewHeader() *Header {
	return &Header{
		typ:    DefaultTyp,
		fields: cmap.New[string, string](),
	}
}

// Typ returns the token type.
func (h *Header) Typ() string { return h.typ }

// SetTyp sets the token type. Values longer than 255 bytes are ignored.
func (h *Header) SetTyp(typ string) {
	if len(typ) <= maxTypLen {
		h.typ = typ
	}
}

// Kid returns the key id.
func (h *Header) Kid() string { return h.kid }

// SetKid sets the key id.
func (h *Header) SetKid(kid string) { h.kid = kid }

// Pwk returns the public web key reference.
func (h *Header) Pwk() string { return h.pwk }

// SetPwk sets the public web key reference.
func (h *Header) SetPwk(pwk string) { h.pwk = pwk }

// X5u returns the X.509 URL.
func (h *Header) X5u() string { return h.x5u }

// SetX5u sets the X.509 URL.
func (h *Header) SetX5u(x5u string) { h.x5u = x5u }

// Field returns the custom field for key, or "" when absent.
func (h *Header) Field(key string) string {
	v, _ := h.fields.Get(key)
	return v
}

// SetField sets one custom field.
func (h *Header) SetField(key, value string) { h.fields.Store(key, value) }

// Fields returns a snapshot copy of the custom fields.
func (h *Header) Fields() map[string]string { return h.fields.Snapshot() }

// SetFields replaces the custom fields wholesale.
func (h *Header) SetFields(fields map[string]string) { h.fields.CopyFromMap(fields) }

// Extension returns the typed extension message, or nil when absent.
// The returned message is the stored one; callers must not mutate it.
func (h *Header) Extension() *anypb.Any { return h.extension }

// SetExtension stores a deep copy of ext. Passing nil clears the slot.
func (h *Header) SetExtension(ext *anypb.Any) {
	if ext == nil {
		h.extension = nil
		return
	}
	h.extension = proto.Clone(ext).(*anypb.Any)
}

// Encode serializes the header into its wire section.
func (h *Header) Encode() ([]byte, error) {
	f := headerFields{typ: h.typ, kid: h.kid, pwk: h.pwk, x5u: h.x5u}
	for k, v := range h.fields.Snapshot() {
		f.custom = append(f.custom, entry{key: k, value: v})
	}

	sec := section{head: f.marshal()}
	withCustom := h.extension != nil
	if withCustom {
		raw, err := proto.Marshal(h.extension)
		if err != nil {
			return nil, errors.Join(ErrSerialization, err)
		}
		sec.custom = raw
	}
	return sec.marshal(withCustom), nil
}

// Decode overwrites the header from its wire section. It returns false on
// empty or malformed input and leaves the receiver untouched in that case;
// on success every field is replaced, including clearing the extension
// when the wire slot is absent.
func (h *Header) Decode(msg []byte) bool {
	if len(msg) == 0 {
		return false
	}
	sec, ok := parseSection(msg)
	if !ok {
		return false
	}
	f, ok := parseHeaderFields(sec.head)
	if !ok {
		return false
	}
	var ext *anypb.Any
	if len(sec.custom) > 0 {
		ext = new(anypb.Any)
		if err := proto.Unmarshal(sec.custom, ext); err != nil {
			return false
		}
	}

	h.typ = f.typ
	h.kid = f.kid
	h.pwk = f.pwk
	h.x5u = f.x5u
	fields := cmap.New[string, string]()
	for _, e := range f.custom {
		fields.Store(e.key, e.value)
	}
	h.fields = fields
	h.extension = ext
	return true
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	c := &Header{
		typ:    h.typ,
		kid:    h.kid,
		pwk:    h.pwk,
		x5u:    h.x5u,
		fields: cmap.New[string, string](),
	}
	c.fields.CopyFrom(h.fields)
	if h.extension != nil {
		c.extension = proto.Clone(h.extension).(*anypb.Any)
	}
	return c
}
