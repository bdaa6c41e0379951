package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// BlockSize is the AES block size in bytes.
const BlockSize = aes.BlockSize

// Context holds independent AES key schedules for encryption and decryption.
// It is not safe for concurrent use.
type Context struct {
	encode cipher.Block
	decode cipher.Block
}

// NewContext returns a Context with no keys set.
func NewContext() *Context {
	return &Context{}
}

// SetEncodeKey installs the key used by the encrypting operations and by
// both CFB directions.
func (c *Context) SetEncodeKey(key []byte) error {
	block, err := newBlock(key)
	if err != nil {
		return err
	}

	c.encode = block

	return nil
}

// SetDecodeKey installs the key used by DecryptECB and DecryptCBC.
func (c *Context) SetDecodeKey(key []byte) error {
	block, err := newBlock(key)
	if err != nil {
		return err
	}

	c.decode = block

	return nil
}

func newBlock(key []byte) (cipher.Block, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return block, nil
}

// EncryptECB encrypts the single block src into dst.
// ECB has no chaining and is only meant as a primitive.
func (c *Context) EncryptECB(dst, src []byte) error {
	if err := checkBlock(c.encode, dst, src); err != nil {
		return err
	}

	c.encode.Encrypt(dst[:BlockSize], src[:BlockSize])

	return nil
}

// DecryptECB decrypts the single block src into dst.
func (c *Context) DecryptECB(dst, src []byte) error {
	if err := checkBlock(c.decode, dst, src); err != nil {
		return err
	}

	c.decode.Decrypt(dst[:BlockSize], src[:BlockSize])

	return nil
}

func checkBlock(block cipher.Block, dst, src []byte) error {
	if block == nil {
		return ErrNoKey
	}

	if len(src) != BlockSize {
		return fmt.Errorf("%w: ECB operates on exactly %d bytes, got %d", ErrInvalidBlockSize, BlockSize, len(src))
	}

	if len(dst) < BlockSize {
		return ErrShortBuffer
	}

	return nil
}

// checkStream validates the arguments shared by the chaining modes.
func checkStream(block cipher.Block, iv, dst, src []byte) error {
	if block == nil {
		return ErrNoKey
	}

	if len(iv) != BlockSize {
		return fmt.Errorf("%w: got %d", ErrIVSize, len(iv))
	}

	if len(dst) < len(src) {
		return ErrShortBuffer
	}

	return nil
}
