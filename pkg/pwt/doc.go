// Package pwt implements compact binary credential tokens: a
// protobuf-encoded analogue of JWT with an AES-based integrity signature
// and a bounded pool for recycling token instances under high-throughput
// issuance.
//
// A token is the envelope {header, payload, signature}. Header and
// payload are serialized independently; the signature is computed by a
// sign.Signer over the concatenated header and payload bytes, so any
// holder of the same signing identity can verify and decode the token.
//
// # Issuing and verifying
//
//	tok, err := pwt.New()
//	if err != nil {
//		// handle error
//	}
//	tok.SetIssuer("auth-svc").
//		SetSubject("user-42").
//		SetAudience("api").
//		SetExpiresIn(time.Hour)
//
//	raw, err := tok.Encode()
//
//	// The receiver needs the same signing identity.
//	recv, _ := pwt.New()
//	recv.CopySigner(tok)
//	if recv.Decode(raw) {
//		// recv now carries the decoded claims
//	}
//
// Decode and IsTokenValid treat their input as untrusted: they return
// false on empty input, malformed envelopes, signature mismatches and
// inner decode failures, and never panic. A failed Decode leaves the
// receiver untouched. Encode, by contrast, reports programmer misuse
// (missing header, payload or signer) and signer failures as errors.
//
// # Claims
//
// The payload carries the registered claims (issuer, subject, audience,
// expiry, not-before, issued-at), free-form string fields, an optional
// typed extension (anypb.Any) and a correlation id generated per
// instance and preserved verbatim through decode. The audience is a
// tagged union: a single value is promoted to a list the first time a
// second value is added, preserving order and without deduplication.
//
// # Pooling
//
//	pool, err := pwt.NewPool(pwt.WithMaxSize(100), pwt.WithTemplate(tok))
//	...
//	borrowed, err := pool.Get(ctx)
//	if err != nil {
//		// ctx was canceled while the pool was exhausted
//	}
//	defer pool.Put(borrowed)
//
// The pool warm-starts at half its maximum size, grows lazily up to the
// maximum, and blocks Get when exhausted until a Put or context
// cancellation. Borrowed tokens are exclusively owned until returned.
package pwt
