package cryptotest

// NoopService passes token material through without encryption. Test use only.
type NoopService struct{}

func (NoopService) Encrypt(plaintext string) (string, error) { return plaintext, nil }
func (NoopService) Decrypt(encoded string) (string, error)   { return encoded, nil }
