package pwt

import (
	"errors"
	"time"

	"github.com/Wind-318/baselib/pkg/cmap"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// DefaultExpiresIn is the lifetime a fresh payload gets when no explicit
// expiry is configured.
const DefaultExpiresIn = time.Hour

// audience is the tagged union behind the aud claim: either a single
// value or a list. Promotion from single to list is one-directional and
// only happens through Add.
type audience struct {
	multi bool
	one   string
	many  []string
}

func (a *audience) first() string {
	if !a.multi {
		return a.one
	}
	if len(a.many) == 0 {
		return ""
	}
	return a.many[0]
}

func (a *audience) list() []string {
	if a.multi {
		out := make([]string, len(a.many))
		copy(out, a.many)
		return out
	}
	if a.one == "" {
		return nil
	}
	return []string{a.one}
}

func (a *audience) set(aud string) {
	a.multi = false
	a.one = aud
	a.many = nil
}

func (a *audience) setList(auds []string) {
	a.multi = true
	a.one = ""
	a.many = make([]string, len(auds))
	copy(a.many, auds)
}

// add appends aud, promoting a non-empty single value into a two-element
// list that preserves the original-then-new order. An empty single value
// counts as "no audience yet" and stays single.
func (a *audience) add(aud string) {
	switch {
	case a.multi:
		a.many = append(a.many, aud)
	case a.one == "":
		a.one = aud
	default:
		a.many = []string{a.one, aud}
		a.one = ""
		a.multi = true
	}
}

func (a *audience) clone() audience {
	c := audience{multi: a.multi, one: a.one}
	if a.many != nil {
		c.many = make([]string, len(a.many))
		copy(c.many, a.many)
	}
	return c
}

// Payload holds the token claims: issuer, subject, audience, the three
// optional timestamps (zero time means unset), the per-instance
// correlation id, free-form string fields and an optional typed extension.
type Payload struct {
	iss       string
	sub       string
	aud       audience
	exp       time.Time
	nbf       time.Time
	iat       time.Time
	pbi       string
	fields    *cmap.Map[string, string]
	extension *anypb.Any
}

// PayloadOption configures NewPayload.
type PayloadOption func(*payloadConfig)

type payloadConfig struct {
	expIn     time.Duration
	nbfIn     time.Duration
	iatIn     time.Duration
	audiences []string
	extension *anypb.Any
}

// WithExpiresIn sets the expiry offset from now. Default is one hour.
func WithExpiresIn(d time.Duration) PayloadOption {
	return func(c *payloadConfig) { c.expIn = d }
}

// WithNotBeforeIn sets the not-before offset from now. Default is zero.
func WithNotBeforeIn(d time.Duration) PayloadOption {
	return func(c *payloadConfig) { c.nbfIn = d }
}

// WithIssuedIn sets the issued-at offset from now. Default is zero.
func WithIssuedIn(d time.Duration) PayloadOption {
	return func(c *payloadConfig) { c.iatIn = d }
}

// WithAudiences starts the payload with a multi-valued audience,
// overriding the single audience argument of NewPayload.
func WithAudiences(auds []string) PayloadOption {
	return func(c *payloadConfig) {
		c.audiences = make([]string, len(auds))
		copy(c.audiences, auds)
	}
}

// WithExtension attaches a typed extension message.
func WithExtension(ext *anypb.Any) PayloadOption {
	return func(c *payloadConfig) { c.extension = ext }
}

// NewPayload creates a payload with a fresh correlation id. The three
// timestamps default to iat=now, nbf=now and exp=now+DefaultExpiresIn.
// An impossible window (exp before iat, or nbf after exp) fails fast with
// ErrInvalidTimeWindow.
func NewPayload(iss, sub, aud string, opts ...PayloadOption) (*Payload, error) {
	cfg := payloadConfig{expIn: DefaultExpiresIn}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.expIn < cfg.iatIn || cfg.nbfIn > cfg.expIn {
		return nil, ErrInvalidTimeWindow
	}

	now := time.Now().UTC()
	p := &Payload{
		iss:    iss,
		sub:    sub,
		exp:    now.Add(cfg.expIn),
		nbf:    now.Add(cfg.nbfIn),
		iat:    now.Add(cfg.iatIn),
		pbi:    uuid.NewString(),
		fields: cmap.New[string, string](),
	}
	if cfg.audiences != nil {
		p.aud.setList(cfg.audiences)
	} else {
		p.aud.set(aud)
	}
	if cfg.extension != nil {
		p.extension = proto.Clone(cfg.extension).(*anypb.Any)
	}
	return p, nil
}

// emptyPayload builds the blank receiver Decode fills in.
func emptyPayload() *Payload {
	return &Payload{fields: cmap.New[string, string]()}
}

// Issuer returns the iss claim.
func (p *Payload) Issuer() string { return p.iss }

// SetIssuer sets the iss claim.
func (p *Payload) SetIssuer(iss string) { p.iss = iss }

// Subject returns the sub claim.
func (p *Payload) Subject() string { return p.sub }

// SetSubject sets the sub claim.
func (p *Payload) SetSubject(sub string) { p.sub = sub }

// Audience returns the single audience value, or the first element of a
// multi-valued audience, or "" when no audience is set.
func (p *Payload) Audience() string { return p.aud.first() }

// Audiences returns the normalized audience list. A single value yields a
// one-element list; no audience yields nil.
func (p *Payload) Audiences() []string { return p.aud.list() }

// SetAudience resets the audience to a single value.
func (p *Payload) SetAudience(aud string) { p.aud.set(aud) }

// SetAudiences resets the audience to a list.
func (p *Payload) SetAudiences(auds []string) { p.aud.setList(auds) }

// AddAudience appends one audience, promoting a single value to a list
// with the original value first. No deduplication is performed.
func (p *Payload) AddAudience(aud string) { p.aud.add(aud) }

// AddAudiences appends several audiences in order.
func (p *Payload) AddAudiences(auds []string) {
	for _, aud := range auds {
		p.aud.add(aud)
	}
}

// ExpiresAt returns the exp claim; the zero time means unset.
func (p *Payload) ExpiresAt() time.Time { return p.exp }

// SetExpiresAt sets the exp claim. The zero time unsets it.
func (p *Payload) SetExpiresAt(t time.Time) { p.exp = t }

// SetExpiresIn sets the exp claim to now plus d.
func (p *Payload) SetExpiresIn(d time.Duration) { p.exp = time.Now().UTC().Add(d) }

// NotBefore returns the nbf claim; the zero time means unset.
func (p *Payload) NotBefore() time.Time { return p.nbf }

// SetNotBefore sets the nbf claim. The zero time unsets it.
func (p *Payload) SetNotBefore(t time.Time) { p.nbf = t }

// SetNotBeforeIn sets the nbf claim to now plus d.
func (p *Payload) SetNotBeforeIn(d time.Duration) { p.nbf = time.Now().UTC().Add(d) }

// IssuedAt returns the iat claim; the zero time means unset.
func (p *Payload) IssuedAt() time.Time { return p.iat }

// SetIssuedAt sets the iat claim. The zero time unsets it.
func (p *Payload) SetIssuedAt(t time.Time) { p.iat = t }

// SetIssuedIn sets the iat claim to now plus d.
func (p *Payload) SetIssuedIn(d time.Duration) { p.iat = time.Now().UTC().Add(d) }

// Pbi returns the correlation id. It is generated per instance and
// carried verbatim through encode/decode.
func (p *Payload) Pbi() string { return p.pbi }

// Field returns the custom field for key, or "" when absent.
func (p *Payload) Field(key string) string {
	v, _ := p.fields.Get(key)
	return v
}

// SetField sets one custom field.
func (p *Payload) SetField(key, value string) { p.fields.Store(key, value) }

// Fields returns a snapshot copy of the custom fields.
func (p *Payload) Fields() map[string]string { return p.fields.Snapshot() }

// SetFields replaces the custom fields wholesale.
func (p *Payload) SetFields(fields map[string]string) { p.fields.CopyFromMap(fields) }

// Extension returns the typed extension message, or nil when absent.
// The returned message is the stored one; callers must not mutate it.
func (p *Payload) Extension() *anypb.Any { return p.extension }

// SetExtension stores a deep copy of ext. Passing nil clears the slot.
func (p *Payload) SetExtension(ext *anypb.Any) {
	if ext == nil {
		p.extension = nil
		return
	}
	p.extension = proto.Clone(ext).(*anypb.Any)
}

// IsExpired reports whether the exp claim is set and in the past. An
// unset expiry never expires.
func (p *Payload) IsExpired() bool {
	return !p.exp.IsZero() && p.exp.Before(time.Now())
}

// Encode serializes the payload into its wire section.
func (p *Payload) Encode() ([]byte, error) {
	f := payloadFields{iss: p.iss, sub: p.sub, pbi: p.pbi}
	if p.aud.multi {
		f.audVec = p.aud.list()
	} else {
		f.aud = p.aud.one
	}
	if !p.exp.IsZero() {
		f.exp = timestamppb.New(p.exp)
	}
	if !p.nbf.IsZero() {
		f.nbf = timestamppb.New(p.nbf)
	}
	if !p.iat.IsZero() {
		f.iat = timestamppb.New(p.iat)
	}
	for k, v := range p.fields.Snapshot() {
		f.custom = append(f.custom, entry{key: k, value: v})
	}

	head, err := f.marshal()
	if err != nil {
		return nil, errors.Join(ErrSerialization, err)
	}
	sec := section{head: head}
	withCustom := p.extension != nil
	if withCustom {
		raw, err := proto.Marshal(p.extension)
		if err != nil {
			return nil, errors.Join(ErrSerialization, err)
		}
		sec.custom = raw
	}
	return sec.marshal(withCustom), nil
}

// Decode overwrites the payload from its wire section. It returns false
// on empty or malformed input and leaves the receiver untouched in that
// case. On success every field is replaced: a non-empty aud_vec takes
// precedence over the single aud slot, absent timestamps decode to unset,
// the correlation id is taken verbatim from the wire, and the extension
// is cleared when its slot is absent.
func (p *Payload) Decode(msg []byte) bool {
	if len(msg) == 0 {
		return false
	}
	sec, ok := parseSection(msg)
	if !ok {
		return false
	}
	f, ok := parsePayloadFields(sec.head)
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

	p.iss = f.iss
	p.sub = f.sub
	if len(f.audVec) > 0 {
		p.aud.setList(f.audVec)
	} else {
		p.aud.set(f.aud)
	}
	p.exp = asTime(f.exp)
	p.nbf = asTime(f.nbf)
	p.iat = asTime(f.iat)
	p.pbi = f.pbi
	fields := cmap.New[string, string]()
	for _, e := range f.custom {
		fields.Store(e.key, e.value)
	}
	p.fields = fields
	p.extension = ext
	return true
}

// Clone returns a deep copy of the payload with a fresh correlation id.
func (p *Payload) Clone() *Payload {
	c := &Payload{
		iss:    p.iss,
		sub:    p.sub,
		aud:    p.aud.clone(),
		exp:    p.exp,
		nbf:    p.nbf,
		iat:    p.iat,
		pbi:    uuid.NewString(),
		fields: cmap.New[string, string](),
	}
	c.fields.CopyFrom(p.fields)
	if p.extension != nil {
		c.extension = proto.Clone(p.extension).(*anypb.Any)
	}
	return c
}

func asTime(ts *timestamppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime()
}
