package domain

// Wire-format constants for the secure exchange protocol.
//
// These values are part of the documented wire contract and must match the
// browser counterpart exactly. Changing any of them breaks interoperability.
const (
	// SessionKeySize is the size in bytes of a symmetric session key (AES-256).
	SessionKeySize = 32

	// NonceSize is the size in bytes of the GCM nonce carried in each envelope.
	// The counterpart uses a 16-byte IV rather than the more common 12 bytes.
	NonceSize = 16

	// TagSize is the size in bytes of the GCM authentication tag (128 bits).
	TagSize = 16

	// RSAKeyBits is the modulus size of the server keypair.
	RSAKeyBits = 2048
)
