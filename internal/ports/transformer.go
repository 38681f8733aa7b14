package ports

// Transform is a symmetric stream-style cipher. Every call starts a fresh
// keystream from the same key material, so output length equals input length
// and cost per byte is constant. dst must be at least len(src) bytes.
type Transform interface {
	Name() string
	Encrypt(dst, src []byte)
	Decrypt(dst, src []byte)
}
