package signature

import (
	"errors"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	k1ScalarSize      = 32
	k1UncompressedLen = 65
	k1UncompressedTag = 0x04

	// k1MaxAttempts bounds rejection sampling; each draw is out of range with
	// probability below 2^-127.
	k1MaxAttempts = 64
)

var errScalarRange = errors.New("scalar out of range")

// koblitzCurve implements secp256k1. Signing uses RFC 6979 deterministic
// nonces, so the random source is only used for key generation.
type koblitzCurve struct{}

func (koblitzCurve) scalarSize() int { return k1ScalarSize }

func (koblitzCurve) generate(random io.Reader) ([]byte, []byte, error) {
	buf := make([]byte, k1ScalarSize)

	for range k1MaxAttempts {
		if _, err := io.ReadFull(random, buf); err != nil {
			return nil, nil, fmt.Errorf("reading random scalar: %w", err)
		}

		key, err := k1PrivateKey(buf)
		if err != nil {
			continue
		}

		return key.Serialize(), key.PubKey().SerializeUncompressed(), nil
	}

	return nil, nil, errScalarRange
}

func k1PrivateKey(raw []byte) (*secp256k1.PrivateKey, error) {
	padded, err := leftPad(raw, k1ScalarSize)
	if err != nil {
		return nil, err
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(padded); overflow || scalar.IsZero() {
		return nil, errScalarRange
	}

	return secp256k1.NewPrivateKey(&scalar), nil
}

func k1PublicKey(raw []byte) (*secp256k1.PublicKey, error) {
	if len(raw) != k1UncompressedLen || raw[0] != k1UncompressedTag {
		return nil, fmt.Errorf("expected %d-byte uncompressed point", k1UncompressedLen)
	}

	return secp256k1.ParsePubKey(raw)
}

func (koblitzCurve) derivePublic(raw []byte) ([]byte, error) {
	key, err := k1PrivateKey(raw)
	if err != nil {
		return nil, err
	}

	return key.PubKey().SerializeUncompressed(), nil
}

func (koblitzCurve) checkPublic(raw []byte) error {
	_, err := k1PublicKey(raw)

	return err
}

func (koblitzCurve) sign(_ io.Reader, priv, hash []byte) ([]byte, error) {
	key, err := k1PrivateKey(priv)
	if err != nil {
		return nil, err
	}

	return secpecdsa.Sign(key, hash).Serialize(), nil
}

func (koblitzCurve) verify(pub, hash, sig []byte) bool {
	key, err := k1PublicKey(pub)
	if err != nil {
		return false
	}

	parsed, err := secpecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}

	return parsed.Verify(hash, key)
}
