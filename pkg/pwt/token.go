package pwt

import (
	"crypto/subtle"
	"time"

	"github.com/Wind-318/baselib/pkg/sign"
	"github.com/Wind-318/baselib/pkg/timeutil"

	"google.golang.org/protobuf/types/known/anypb"
)

// Token composes a header, a payload and a signer into a signed binary
// credential. Each part is owned exclusively and can be replaced; Encode
// requires all three to be present.
//
// A Token is not internally synchronized: ownership is exclusive to one
// goroutine at a time (which is what Pool guarantees for borrowed
// instances).
type Token struct {
	header  *Header
	payload *Payload
	signer  sign.Signer
}

// TokenOption configures New.
type TokenOption func(*Token)

// WithHeader attaches a pre-built header.
func WithHeader(h *Header) TokenOption {
	return func(t *Token) { t.header = h }
}

// WithPayload attaches a pre-built payload.
func WithPayload(p *Payload) TokenOption {
	return func(t *Token) { t.payload = p }
}

// WithSigner attaches a pre-built signer.
func WithSigner(s sign.Signer) TokenOption {
	return func(t *Token) { t.signer = s }
}

// New creates a token, filling any part not supplied with its default:
// a fresh header, an empty-claims payload and a randomly keyed AES signer.
func New(opts ...TokenOption) (*Token, error) {
	t := &Token{}
	for _, opt := range opts {
		opt(t)
	}
	if t.header == nil {
		t.header = NewHeader()
	}
	if t.payload == nil {
		p, err := NewPayload("", "", "")
		if err != nil {
			return nil, err
		}
		t.payload = p
	}
	if t.signer == nil {
		s, err := sign.NewAES()
		if err != nil {
			return nil, err
		}
		t.signer = s
	}
	return t, nil
}

// Encode serializes the token: header and payload are encoded
// independently, the signature is computed over their concatenated bytes,
// and the three segments are wrapped into the outer envelope. Fails fast
// when any of the three parts is missing; signer failures propagate.
func (t *Token) Encode() ([]byte, error) {
	switch {
	case t.header == nil:
		return nil, ErrMissingHeader
	case t.payload == nil:
		return nil, ErrMissingPayload
	case t.signer == nil:
		return nil, ErrMissingSigner
	}

	header, err := t.header.Encode()
	if err != nil {
		return nil, err
	}
	payload, err := t.payload.Encode()
	if err != nil {
		return nil, err
	}
	signature, err := t.sign(header, payload)
	if err != nil {
		return nil, err
	}

	return envelope{header: header, payload: payload, signature: signature}.marshal(), nil
}

// Decode parses msg, verifies its signature with the current signer and,
// only on full success, overwrites the token's header and payload with
// the decoded ones. Any parse failure, signature mismatch or inner decode
// failure returns false and leaves the token untouched.
func (t *Token) Decode(msg []byte) bool {
	if len(msg) == 0 || t.header == nil || t.payload == nil || t.signer == nil {
		return false
	}
	env, ok := parseEnvelope(msg)
	if !ok {
		return false
	}
	if !t.verify(env) {
		return false
	}

	header := NewHeader()
	if !header.Decode(env.header) {
		return false
	}
	payload := emptyPayload()
	if !payload.Decode(env.payload) {
		return false
	}

	t.header = header
	t.payload = payload
	return true
}

// IsTokenValid parses msg and checks its signature against the current
// signer without committing any decoded state. It returns false on any
// parse or signing error.
func (t *Token) IsTokenValid(msg []byte) bool {
	if len(msg) == 0 || t.signer == nil {
		return false
	}
	env, ok := parseEnvelope(msg)
	if !ok {
		return false
	}
	return t.verify(env)
}

// IsExpired reports whether the payload has expired. A token without a
// payload counts as expired.
func (t *Token) IsExpired() bool {
	if t.payload == nil {
		return true
	}
	return t.payload.IsExpired()
}

// Clone returns a deep copy of the token via the Clone contracts of its
// parts. The cloned payload gets a fresh correlation id.
func (t *Token) Clone() *Token {
	c := &Token{}
	if t.header != nil {
		c.header = t.header.Clone()
	}
	if t.payload != nil {
		c.payload = t.payload.Clone()
	}
	if t.signer != nil {
		c.signer = t.signer.Clone()
	}
	return c
}

// CopySigner replaces this token's signer with a deep copy of other's,
// giving both tokens an identical signing identity without shared state.
// A nil other or other without a signer is a no-op.
func (t *Token) CopySigner(other *Token) *Token {
	if other == nil || other.signer == nil {
		return t
	}
	t.signer = other.signer.Clone()
	return t
}

func (t *Token) sign(header, payload []byte) ([]byte, error) {
	data := make([]byte, 0, len(header)+len(payload))
	data = append(data, header...)
	data = append(data, payload...)
	return t.signer.Sign(data)
}

func (t *Token) verify(env envelope) bool {
	want, err := t.sign(env.header, env.payload)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(want, env.signature) == 1
}

// Header returns the attached header, which may be nil.
func (t *Token) Header() *Header { return t.header }

// SetHeader replaces the header.
func (t *Token) SetHeader(h *Header) *Token {
	t.header = h
	return t
}

// Payload returns the attached payload, which may be nil.
func (t *Token) Payload() *Payload { return t.payload }

// SetPayload replaces the payload.
func (t *Token) SetPayload(p *Payload) *Token {
	t.payload = p
	return t
}

// Signer returns the attached signer, which may be nil.
func (t *Token) Signer() sign.Signer { return t.signer }

// SetSigner replaces the signer.
func (t *Token) SetSigner(s sign.Signer) *Token {
	t.signer = s
	return t
}

// The fluent setters below mirror the header and payload APIs on the
// token itself. All of them tolerate a missing part and return the token
// for chaining.

// SetTyp sets the header token type.
func (t *Token) SetTyp(typ string) *Token {
	if t.header != nil {
		t.header.SetTyp(typ)
	}
	return t
}

// SetKid sets the header key id.
func (t *Token) SetKid(kid string) *Token {
	if t.header != nil {
		t.header.SetKid(kid)
	}
	return t
}

// SetPwk sets the header public web key reference.
func (t *Token) SetPwk(pwk string) *Token {
	if t.header != nil {
		t.header.SetPwk(pwk)
	}
	return t
}

// SetX5u sets the header X.509 URL.
func (t *Token) SetX5u(x5u string) *Token {
	if t.header != nil {
		t.header.SetX5u(x5u)
	}
	return t
}

// SetHeaderField sets one header custom field.
func (t *Token) SetHeaderField(key, value string) *Token {
	if t.header != nil {
		t.header.SetField(key, value)
	}
	return t
}

// SetHeaderFields replaces the header custom fields.
func (t *Token) SetHeaderFields(fields map[string]string) *Token {
	if t.header != nil {
		t.header.SetFields(fields)
	}
	return t
}

// SetCustomHeader attaches a typed extension to the header.
func (t *Token) SetCustomHeader(ext *anypb.Any) *Token {
	if t.header != nil {
		t.header.SetExtension(ext)
	}
	return t
}

// SetIssuer sets the iss claim.
func (t *Token) SetIssuer(iss string) *Token {
	if t.payload != nil {
		t.payload.SetIssuer(iss)
	}
	return t
}

// SetSubject sets the sub claim.
func (t *Token) SetSubject(sub string) *Token {
	if t.payload != nil {
		t.payload.SetSubject(sub)
	}
	return t
}

// SetAudience resets the audience to a single value.
func (t *Token) SetAudience(aud string) *Token {
	if t.payload != nil {
		t.payload.SetAudience(aud)
	}
	return t
}

// SetAudiences resets the audience to a list.
func (t *Token) SetAudiences(auds []string) *Token {
	if t.payload != nil {
		t.payload.SetAudiences(auds)
	}
	return t
}

// AddAudience appends one audience value.
func (t *Token) AddAudience(aud string) *Token {
	if t.payload != nil {
		t.payload.AddAudience(aud)
	}
	return t
}

// AddAudiences appends several audience values in order.
func (t *Token) AddAudiences(auds []string) *Token {
	if t.payload != nil {
		t.payload.AddAudiences(auds)
	}
	return t
}

// SetExpiresAt sets the exp claim.
func (t *Token) SetExpiresAt(at time.Time) *Token {
	if t.payload != nil {
		t.payload.SetExpiresAt(at)
	}
	return t
}

// SetExpiresIn sets the exp claim to now plus d.
func (t *Token) SetExpiresIn(d time.Duration) *Token {
	if t.payload != nil {
		t.payload.SetExpiresIn(d)
	}
	return t
}

// SetNotBefore sets the nbf claim.
func (t *Token) SetNotBefore(at time.Time) *Token {
	if t.payload != nil {
		t.payload.SetNotBefore(at)
	}
	return t
}

// SetNotBeforeIn sets the nbf claim to now plus d.
func (t *Token) SetNotBeforeIn(d time.Duration) *Token {
	if t.payload != nil {
		t.payload.SetNotBeforeIn(d)
	}
	return t
}

// SetIssuedAt sets the iat claim.
func (t *Token) SetIssuedAt(at time.Time) *Token {
	if t.payload != nil {
		t.payload.SetIssuedAt(at)
	}
	return t
}

// SetIssuedIn sets the iat claim to now plus d.
func (t *Token) SetIssuedIn(d time.Duration) *Token {
	if t.payload != nil {
		t.payload.SetIssuedIn(d)
	}
	return t
}

// SetPayloadField sets one payload custom field.
func (t *Token) SetPayloadField(key, value string) *Token {
	if t.payload != nil {
		t.payload.SetField(key, value)
	}
	return t
}

// SetPayloadFields replaces the payload custom fields.
func (t *Token) SetPayloadFields(fields map[string]string) *Token {
	if t.payload != nil {
		t.payload.SetFields(fields)
	}
	return t
}

// SetCustomPayload attaches a typed extension to the payload.
func (t *Token) SetCustomPayload(ext *anypb.Any) *Token {
	if t.payload != nil {
		t.payload.SetExtension(ext)
	}
	return t
}

// Typ returns the header token type, or "" without a header.
func (t *Token) Typ() string {
	if t.header == nil {
		return ""
	}
	return t.header.Typ()
}

// Kid returns the header key id, or "" without a header.
func (t *Token) Kid() string {
	if t.header == nil {
		return ""
	}
	return t.header.Kid()
}

// Pwk returns the header public web key reference, or "" without a header.
func (t *Token) Pwk() string {
	if t.header == nil {
		return ""
	}
	return t.header.Pwk()
}

// X5u returns the header X.509 URL, or "" without a header.
func (t *Token) X5u() string {
	if t.header == nil {
		return ""
	}
	return t.header.X5u()
}

// HeaderField returns one header custom field, or "" when absent.
func (t *Token) HeaderField(key string) string {
	if t.header == nil {
		return ""
	}
	return t.header.Field(key)
}

// HeaderFields returns a snapshot of the header custom fields.
func (t *Token) HeaderFields() map[string]string {
	if t.header == nil {
		return nil
	}
	return t.header.Fields()
}

// CustomHeader returns the header extension, or nil when absent.
func (t *Token) CustomHeader() *anypb.Any {
	if t.header == nil {
		return nil
	}
	return t.header.Extension()
}

// Issuer returns the iss claim, or "" without a payload.
func (t *Token) Issuer() string {
	if t.payload == nil {
		return ""
	}
	return t.payload.Issuer()
}

// Subject returns the sub claim, or "" without a payload.
func (t *Token) Subject() string {
	if t.payload == nil {
		return ""
	}
	return t.payload.Subject()
}

// Audience returns the single (or first) audience value.
func (t *Token) Audience() string {
	if t.payload == nil {
		return ""
	}
	return t.payload.Audience()
}

// Audiences returns the normalized audience list.
func (t *Token) Audiences() []string {
	if t.payload == nil {
		return nil
	}
	return t.payload.Audiences()
}

// ExpiresAt returns the exp claim; zero without a payload or when unset.
func (t *Token) ExpiresAt() time.Time {
	if t.payload == nil {
		return time.Time{}
	}
	return t.payload.ExpiresAt()
}

// ExpiresAtString renders the exp claim in the fixed UTC layout, or ""
// when unset.
func (t *Token) ExpiresAtString() string {
	return formatClaim(t.ExpiresAt())
}

// NotBefore returns the nbf claim; zero without a payload or when unset.
func (t *Token) NotBefore() time.Time {
	if t.payload == nil {
		return time.Time{}
	}
	return t.payload.NotBefore()
}

// NotBeforeString renders the nbf claim in the fixed UTC layout, or ""
// when unset.
func (t *Token) NotBeforeString() string {
	return formatClaim(t.NotBefore())
}

// IssuedAt returns the iat claim; zero without a payload or when unset.
func (t *Token) IssuedAt() time.Time {
	if t.payload == nil {
		return time.Time{}
	}
	return t.payload.IssuedAt()
}

// IssuedAtString renders the iat claim in the fixed UTC layout, or ""
// when unset.
func (t *Token) IssuedAtString() string {
	return formatClaim(t.IssuedAt())
}

// Pbi returns the payload correlation id, or "" without a payload.
func (t *Token) Pbi() string {
	if t.payload == nil {
		return ""
	}
	return t.payload.Pbi()
}

// PayloadField returns one payload custom field, or "" when absent.
func (t *Token) PayloadField(key string) string {
	if t.payload == nil {
		return ""
	}
	return t.payload.Field(key)
}

// PayloadFields returns a snapshot of the payload custom fields.
func (t *Token) PayloadFields() map[string]string {
	if t.payload == nil {
		return nil
	}
	return t.payload.Fields()
}

// CustomPayload returns the payload extension, or nil when absent.
func (t *Token) CustomPayload() *anypb.Any {
	if t.payload == nil {
		return nil
	}
	return t.payload.Extension()
}

func formatClaim(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	return timeutil.Format(at)
}
