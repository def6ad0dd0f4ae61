package pwt

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Wire layout. Every message is standard protobuf encoding; the envelopes
// nest serialized sub-messages as bytes fields so the signature can cover
// the exact header/payload bytes that travel on the wire.
//
//	Envelope  { 1: header bytes, 2: payload bytes, 3: signature bytes }
//	Section   { 1: head bytes, 2: custom bytes }   // custom: anypb.Any
//	Header    { 1: typ, 2: kid, 3: pwk, 4: x5u, 5: repeated Entry }
//	Payload   { 1: iss, 2: sub, 3: aud, 4: repeated aud_vec,
//	            5: exp Timestamp, 6: nbf Timestamp, 7: iat Timestamp,
//	            8: pbi, 9: repeated Entry }
//	Entry     { 1: key, 2: value }
//	Timestamp = google.protobuf.Timestamp

type envelope struct {
	header    []byte
	payload   []byte
	signature []byte
}

func (e envelope) marshal() []byte {
	var b []byte
	b = appendBytes(b, 1, e.header)
	b = appendBytes(b, 2, e.payload)
	b = appendBytes(b, 3, e.signature)
	return b
}

func parseEnvelope(msg []byte) (envelope, bool) {
	var e envelope
	ok := walkFields(msg, func(num protowire.Number, v []byte) bool {
		switch num {
		case 1:
			e.header = v
		case 2:
			e.payload = v
		case 3:
			e.signature = v
		}
		return true
	})
	return e, ok
}

// section wraps the field-level message of a header or payload together
// with its optional custom extension slot. A zero-length custom slot is
// indistinguishable from an absent one and both decode as "no extension".
type section struct {
	head   []byte
	custom []byte
}

func (s section) marshal(withCustom bool) []byte {
	var b []byte
	b = appendBytes(b, 1, s.head)
	if withCustom {
		b = appendBytes(b, 2, s.custom)
	}
	return b
}

func parseSection(msg []byte) (section, bool) {
	var s section
	ok := walkFields(msg, func(num protowire.Number, v []byte) bool {
		switch num {
		case 1:
			s.head = v
		case 2:
			s.custom = v
		}
		return true
	})
	return s, ok
}

type entry struct {
	key   string
	value string
}

func (e entry) marshal() []byte {
	var b []byte
	b = appendString(b, 1, e.key)
	b = appendString(b, 2, e.value)
	return b
}

func parseEntry(msg []byte) (entry, bool) {
	var e entry
	ok := walkFields(msg, func(num protowire.Number, v []byte) bool {
		switch num {
		case 1:
			e.key = string(v)
		case 2:
			e.value = string(v)
		}
		return true
	})
	return e, ok
}

type headerFields struct {
	typ    string
	kid    string
	pwk    string
	x5u    string
	custom []entry
}

func (f headerFields) marshal() []byte {
	var b []byte
	b = appendString(b, 1, f.typ)
	b = appendString(b, 2, f.kid)
	b = appendString(b, 3, f.pwk)
	b = appendString(b, 4, f.x5u)
	for _, e := range f.custom {
		b = appendBytes(b, 5, e.marshal())
	}
	return b
}

func parseHeaderFields(msg []byte) (headerFields, bool) {
	var f headerFields
	ok := walkFields(msg, func(num protowire.Number, v []byte) bool {
		switch num {
		case 1:
			f.typ = string(v)
		case 2:
			f.kid = string(v)
		case 3:
			f.pwk = string(v)
		case 4:
			f.x5u = string(v)
		case 5:
			e, ok := parseEntry(v)
			if !ok {
				return false
			}
			f.custom = append(f.custom, e)
		}
		return true
	})
	return f, ok
}

type payloadFields struct {
	iss    string
	sub    string
	aud    string
	audVec []string
	exp    *timestamppb.Timestamp
	nbf    *timestamppb.Timestamp
	iat    *timestamppb.Timestamp
	pbi    string
	custom []entry
}

func (f payloadFields) marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, f.iss)
	b = appendString(b, 2, f.sub)
	b = appendString(b, 3, f.aud)
	for _, aud := range f.audVec {
		b = appendString(b, 4, aud)
	}
	var err error
	if b, err = appendTimestamp(b, 5, f.exp); err != nil {
		return nil, err
	}
	if b, err = appendTimestamp(b, 6, f.nbf); err != nil {
		return nil, err
	}
	if b, err = appendTimestamp(b, 7, f.iat); err != nil {
		return nil, err
	}
	b = appendString(b, 8, f.pbi)
	for _, e := range f.custom {
		b = appendBytes(b, 9, e.marshal())
	}
	return b, nil
}

func parsePayloadFields(msg []byte) (payloadFields, bool) {
	var f payloadFields
	ok := walkFields(msg, func(num protowire.Number, v []byte) bool {
		switch num {
		case 1:
			f.iss = string(v)
		case 2:
			f.sub = string(v)
		case 3:
			f.aud = string(v)
		case 4:
			f.audVec = append(f.audVec, string(v))
		case 5, 6, 7:
			ts := new(timestamppb.Timestamp)
			if err := proto.Unmarshal(v, ts); err != nil {
				return false
			}
			switch num {
			case 5:
				f.exp = ts
			case 6:
				f.nbf = ts
			case 7:
				f.iat = ts
			}
		case 8:
			f.pbi = string(v)
		case 9:
			e, ok := parseEntry(v)
			if !ok {
				return false
			}
			f.custom = append(f.custom, e)
		}
		return true
	})
	return f, ok
}

// walkFields iterates the length-delimited fields of a protobuf message,
// handing each one to fn and skipping fields of other wire types. Returns
// false on malformed input or when fn rejects a field.
func walkFields(msg []byte, fn func(num protowire.Number, v []byte) bool) bool {
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return false
		}
		msg = msg[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				return false
			}
			msg = msg[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(msg)
		if n < 0 {
			return false
		}
		msg = msg[n:]
		if !fn(num, v) {
			return false
		}
	}
	return true
}

// appendString emits a string field, omitting empty values like proto3.
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendBytes emits a bytes field. Unlike appendString it always emits,
// since envelope slots are meaningful even when empty.
func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendTimestamp emits ts as a nested google.protobuf.Timestamp message,
// omitting the field entirely when ts is nil.
func appendTimestamp(b []byte, num protowire.Number, ts *timestamppb.Timestamp) ([]byte, error) {
	if ts == nil {
		return b, nil
	}
	raw, err := proto.Marshal(ts)
	if err != nil {
		return nil, err
	}
	return appendBytes(b, num, raw), nil
}
