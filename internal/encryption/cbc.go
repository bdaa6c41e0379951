package encryption

import (
	"crypto/cipher"
	"fmt"
)

// EncryptCBC encrypts src into dst in CBC mode. The length of src must be a
// multiple of BlockSize. iv is owned by the caller and is advanced in place to
// the last ciphertext block, so consecutive calls continue the chain.
func (c *Context) EncryptCBC(iv, dst, src []byte) error {
	if err := checkStream(c.encode, iv, dst, src); err != nil {
		return err
	}

	if len(src)%BlockSize != 0 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidBlockSize, len(src))
	}

	if len(src) == 0 {
		return nil
	}

	cipher.NewCBCEncrypter(c.encode, iv).CryptBlocks(dst[:len(src)], src)

	copy(iv, dst[len(src)-BlockSize:len(src)])

	return nil
}

// DecryptCBC decrypts src into dst in CBC mode using the decode key.
// iv is advanced in place to the last ciphertext block consumed.
func (c *Context) DecryptCBC(iv, dst, src []byte) error {
	if err := checkStream(c.decode, iv, dst, src); err != nil {
		return err
	}

	if len(src)%BlockSize != 0 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidBlockSize, len(src))
	}

	if len(src) == 0 {
		return nil
	}

	// src and dst may alias, keep the chaining block before it is overwritten.
	var next [BlockSize]byte

	copy(next[:], src[len(src)-BlockSize:])

	cipher.NewCBCDecrypter(c.decode, iv).CryptBlocks(dst[:len(src)], src)

	copy(iv, next[:])

	return nil
}
