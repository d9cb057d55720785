package identity

// KeyPair is an X25519 key-agreement keypair. The private half must never
// leave the owning device or process; the public half is shared freely.
type KeyPair struct {
	PublicKey  []byte
	PrivateKey []byte
}
