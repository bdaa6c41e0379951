package encryption

// EncryptCFB encrypts src into dst in CFB-128 mode with the encode key.
//
// The intra-block offset starts at zero on every call and is not carried over,
// so a key/IV pair must be used for exactly one complete message. Resuming a
// message across calls after a length that is not a multiple of BlockSize
// produces output no CFB decoder will accept. Existing archives depend on this
// framing, so the behavior is kept as is.
func (c *Context) EncryptCFB(iv, dst, src []byte) error {
	if err := checkStream(c.encode, iv, dst, src); err != nil {
		return err
	}

	c.cfb(iv, dst, src, false)

	return nil
}

// DecryptCFB decrypts src into dst in CFB-128 mode. CFB only runs the forward
// cipher, so it uses the encode key as well. The same single-message
// restriction as EncryptCFB applies.
func (c *Context) DecryptCFB(iv, dst, src []byte) error {
	if err := checkStream(c.encode, iv, dst, src); err != nil {
		return err
	}

	c.cfb(iv, dst, src, true)

	return nil
}

// cfb runs the feedback loop with the register kept in iv itself.
func (c *Context) cfb(iv, dst, src []byte, decrypt bool) {
	offset := 0

	for i := range src {
		if offset == 0 {
			c.encode.Encrypt(iv, iv)
		}

		in := src[i]

		out := in ^ iv[offset]
		dst[i] = out

		if decrypt {
			iv[offset] = in
		} else {
			iv[offset] = out
		}

		offset = (offset + 1) % BlockSize
	}
}
