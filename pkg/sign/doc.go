// Package sign defines the signing capability used to protect token
// integrity and provides a default AES-based implementation.
//
// A Signer owns its identity material (key, iv, salt) and produces a
// deterministic signature for the same material and input, which is what
// token verification relies on: the receiver recomputes the signature with
// its own signer and compares the result to the transmitted one.
//
// The default implementation derives an AES-256 key from the key and salt
// with HKDF-SHA256 and computes the signature as an AES-CBC transform of
// the input. Missing identity material is generated with crypto/rand at
// explicit, overridable sizes.
//
//	signer, err := sign.NewAES()
//	if err != nil {
//		// handle error
//	}
//	sig, err := signer.Sign(data)
//
// Clone returns an independent signer with copied identity material; the
// copy and the original never share mutable state.
package sign
