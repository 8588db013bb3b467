package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
)

// LoadRSAPrivateKeyFromPEM decodes a PKCS#1 or PKCS#8 PEM block.
func LoadRSAPrivateKeyFromPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		return key, nil
	}
	parsed, err8 := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err8 != nil {
		return nil, err
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("PEM is not an RSA private key")
	}
	return rsaKey, nil
}

// LoadOrGenerateKey reads the key at path. With an empty path it generates an
// ephemeral key, which invalidates every token on restart (dev mode only).
func LoadOrGenerateKey(path string) (key *rsa.PrivateKey, ephemeral bool, err error) {
	if path == "" {
		key, err = rsa.GenerateKey(rand.Reader, 2048)
		return key, true, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	key, err = LoadRSAPrivateKeyFromPEM(raw)
	return key, false, err
}
