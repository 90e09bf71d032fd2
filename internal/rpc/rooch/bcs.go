package rooch

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
)

var maxU256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Encoder writes values in BCS (Binary Canonical Serialization), the
// encoding Move chains use for transactions and function arguments.
type Encoder struct {
	buf bytes.Buffer
}

func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *Encoder) WriteU8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf.WriteByte(1)
		return
	}
	e.buf.WriteByte(0)
}

func (e *Encoder) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// WriteU256 writes v as 32 little-endian bytes.
func (e *Encoder) WriteU256(v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(maxU256) > 0 {
		return fmt.Errorf("value %v out of u256 range", v)
	}
	var be [32]byte
	v.FillBytes(be[:])
	for i := len(be) - 1; i >= 0; i-- {
		e.buf.WriteByte(be[i])
	}
	return nil
}

// WriteUleb128 writes a length or enum variant index.
func (e *Encoder) WriteUleb128(v uint64) {
	for v >= 0x80 {
		e.buf.WriteByte(byte(v&0x7f) | 0x80)
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
}

// WriteFixed writes b without a length prefix.
func (e *Encoder) WriteFixed(b []byte) {
	e.buf.Write(b)
}

// WriteBytes writes a length-prefixed vector<u8>.
func (e *Encoder) WriteBytes(b []byte) {
	e.WriteUleb128(uint64(len(b)))
	e.buf.Write(b)
}

func (e *Encoder) WriteString(s string) {
	e.WriteBytes([]byte(s))
}

func (e *Encoder) WriteAddress(a Address) {
	e.buf.Write(a[:])
}
