// Package adaptive seals small secrets at rest.
//
// The cipher is picked from the host architecture:
//
//   - AES-256-GCM where the CPU has AES instructions (amd64, arm64)
//   - ChaCha20-Poly1305 everywhere else
//
// Ciphertexts carry their nonce as a prefix. Key material lives in a
// 0600 key file created on first use:
//
//	key, err := adaptive.LoadOrCreateKey(path)
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(plaintext, aad)
package adaptive
