package logic

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/idelchi/gopck/internal/codec"
	"github.com/idelchi/gopck/internal/encryption"
	"github.com/idelchi/gopck/internal/random"
	"github.com/idelchi/gopck/internal/signature"
)

// Keys is the keygen output document.
type Keys struct {
	Curve         string `yaml:"curve"`
	PrivateKey    string `yaml:"private_key"`
	PublicKey     string `yaml:"public_key"`
	EncryptionKey string `yaml:"encryption_key"`
}

// GenerateKeys creates a signing key pair on curve and a content key, drawing
// from rng. A nil rng seeds a fresh generator from the OS.
func GenerateKeys(curveName string, rng io.Reader) (*Keys, error) {
	curve, err := signature.ParseCurve(curveName)
	if err != nil {
		return nil, err
	}

	if curve == signature.CurveNone {
		return nil, errors.New("a curve is required to generate signing keys")
	}

	if rng == nil {
		g, err := random.NewInitialized()
		if err != nil {
			return nil, fmt.Errorf("seeding random source: %w", err)
		}

		rng = g
	}

	signer, err := signature.New(curve, rng)
	if err != nil {
		return nil, err
	}

	pair, err := signer.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	contentKey := make([]byte, encryption.KeySize)
	if _, err := io.ReadFull(rng, contentKey); err != nil {
		return nil, fmt.Errorf("generating encryption key: %w", err)
	}

	return &Keys{
		Curve:         signer.Curve().String(),
		PrivateKey:    codec.EncodeBase64(pair.Private),
		PublicKey:     codec.EncodeBase64(pair.Public),
		EncryptionKey: codec.EncodeKeyHex(contentKey),
	}, nil
}

// Keygen writes freshly generated keys to out as YAML.
func Keygen(curveName string, out io.Writer) error {
	keys, err := GenerateKeys(curveName, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encoding keys: %w", err)
	}

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("writing keys: %w", err)
	}

	return nil
}
