package signature

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"io"
)

// nistCurve implements the NIST prime curves on top of crypto/ecdsa.
type nistCurve struct {
	curve elliptic.Curve
	size  int
}

func (n nistCurve) scalarSize() int { return n.size }

func (n nistCurve) generate(random io.Reader) ([]byte, []byte, error) {
	key, err := ecdsa.GenerateKey(n.curve, random)
	if err != nil {
		return nil, nil, err
	}

	return n.encode(key)
}

func (n nistCurve) encode(key *ecdsa.PrivateKey) ([]byte, []byte, error) {
	priv, err := key.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("encoding private key: %w", err)
	}

	pub, err := key.PublicKey.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("encoding public key: %w", err)
	}

	return priv, pub, nil
}

func (n nistCurve) privateKey(raw []byte) (*ecdsa.PrivateKey, error) {
	padded, err := leftPad(raw, n.size)
	if err != nil {
		return nil, err
	}

	return ecdsa.ParseRawPrivateKey(n.curve, padded)
}

func (n nistCurve) derivePublic(raw []byte) ([]byte, error) {
	key, err := n.privateKey(raw)
	if err != nil {
		return nil, err
	}

	_, pub, err := n.encode(key)

	return pub, err
}

func (n nistCurve) checkPublic(raw []byte) error {
	_, err := ecdsa.ParseUncompressedPublicKey(n.curve, raw)

	return err
}

func (n nistCurve) sign(random io.Reader, priv, hash []byte) ([]byte, error) {
	key, err := n.privateKey(priv)
	if err != nil {
		return nil, err
	}

	return ecdsa.SignASN1(random, key, hash)
}

func (n nistCurve) verify(pub, hash, sig []byte) bool {
	key, err := ecdsa.ParseUncompressedPublicKey(n.curve, pub)
	if err != nil {
		return false
	}

	return ecdsa.VerifyASN1(key, hash, sig)
}
