package sig

import "fmt"

// appendUvarint appends v using 7-bit little-endian groups with the high bit
// marking continuation.
func appendUvarint(out []byte, v uint64) []byte {
	for v >= 0x80 {
		out = append(out, byte(v&0x7f)|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}

// cursor walks a blob and tracks the absolute offset for error reporting.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

func (c *cursor) readByte() (byte, error) {
	if c.off >= len(c.data) {
		return 0, fmt.Errorf("%w: need 1 byte at offset %d", ErrTruncated, c.off)
	}
	b := c.data[c.off]
	c.off++
	return b, nil
}

func (c *cursor) readUvarint() (uint64, error) {
	var (
		value uint64
		shift uint
	)
	start := c.off
	for {
		if c.off >= len(c.data) {
			return 0, fmt.Errorf("%w: varint at offset %d", ErrTruncated, start)
		}
		b := c.data[c.off]
		c.off++
		if shift == 63 && b > 1 {
			return 0, fmt.Errorf("%w: varint at offset %d overflows 64 bits", ErrMalformed, start)
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("%w: varint at offset %d overflows 64 bits", ErrMalformed, start)
		}
	}
}

func (c *cursor) readBytes(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, c.off, c.remaining())
	}
	out := c.data[c.off : c.off+n]
	c.off += n
	return out, nil
}

// AppendUvarint appends v in the signature varint encoding.
func AppendUvarint(out []byte, v uint64) []byte {
	return appendUvarint(out, v)
}

// Uvarint decodes one varint from the start of data and returns the value
// and the number of bytes consumed.
func Uvarint(data []byte) (uint64, int, error) {
	c := &cursor{data: data}
	v, err := c.readUvarint()
	if err != nil {
		return 0, 0, err
	}
	return v, c.off, nil
}
