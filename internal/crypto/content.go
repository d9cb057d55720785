package crypto

// EncryptString seals UTF-8 text as a payload. Round-trips all valid
// Unicode, including the empty string.
func EncryptString(text string, key []byte) (string, error) {
	return Encrypt([]byte(text), key)
}

// DecryptString is the inverse of EncryptString.
func DecryptString(payload string, key []byte) (string, error) {
	data, err := Decrypt(payload, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
