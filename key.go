package art

import "encoding/binary"

// Key is the capability the tree requires of a user key type (spec.md §4.5,
// §6 "Required user-supplied capabilities on K").
//
// AppendDigits must append a finite, order-preserving, prefix-free byte
// sequence for the key to dst and return the extended slice. Prefix-free
// means no encoded key may be a strict prefix of another key's encoding;
// the builtin wrapper types below (Bytes, String, Uint64, Int64, ...)
// all satisfy this by construction.
//
// K is deliberately not required to be comparable: []byte-backed key types
// like Bytes can never satisfy Go's comparable constraint, but still need to
// be valid keys (spec.md §4.5 "byte strings"). The tree does its final
// exact-match check at a leaf by re-deriving and comparing digits(), not by
// Go's == (spec.md §4.4 "compare digits(leaf.key) == digits(key) in full").
type Key interface {
	AppendDigits(dst []byte) []byte
}

// Bytes is a Key wrapping a raw byte string. Embedded zero bytes are not
// escaped, so two keys where one is a proper prefix of the other containing
// no zero byte still terminate correctly via the 0x00 sentinel appended
// after the payload (spec.md §4.5's terminator scheme); callers storing
// keys that may themselves contain 0x00 should use a length-prefixed Key
// type instead (not provided here, since no SPEC_FULL.md component needs
// it - document your own AppendDigits if you do).
type Bytes []byte

// AppendDigits implements Key.
func (b Bytes) AppendDigits(dst []byte) []byte {
	dst = append(dst, b...)
	return append(dst, 0x00)
}

// String is a Key wrapping a Go string, encoded the same way as Bytes.
type String string

// AppendDigits implements Key.
func (s String) AppendDigits(dst []byte) []byte {
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// Uint64 is a Key wrapping an unsigned 64-bit integer, encoded big-endian so
// that byte-lexicographic order matches numeric order. No terminator is
// needed: every Uint64 encodes to exactly 8 bytes, so no encoding is ever a
// strict prefix of another (prefix-freedom by fixed width).
type Uint64 uint64

// AppendDigits implements Key.
func (u Uint64) AppendDigits(dst []byte) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(u))
	return append(dst, buf[:]...)
}

// Uint32 is the 32-bit analogue of Uint64.
type Uint32 uint32

// AppendDigits implements Key.
func (u Uint32) AppendDigits(dst []byte) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(u))
	return append(dst, buf[:]...)
}

// Int64 is a Key wrapping a signed 64-bit integer. The sign bit is flipped
// before big-endian encoding so that, interpreted as an unsigned integer,
// the byte order matches signed numeric order (the standard trick for
// order-preserving signed-integer encodings: it maps the signed range
// [MinInt64, MaxInt64] onto [0, MaxUint64] monotonically).
type Int64 int64

// AppendDigits implements Key.
func (i Int64) AppendDigits(dst []byte) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(i)^(1<<63))
	return append(dst, buf[:]...)
}

// Int32 is the 32-bit analogue of Int64.
type Int32 int32

// AppendDigits implements Key.
func (i Int32) AppendDigits(dst []byte) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(i)^(1<<31))
	return append(dst, buf[:]...)
}

// digits is a small convenience wrapper used internally wherever the full
// byte sequence for a key is needed at once (leaf verification, prefix
// computation at insert time). It's kept distinct from AppendDigits'
// append-style signature so call sites that want a fresh slice don't need
// to remember to pass nil.
func digits[K Key](k K) []byte {
	return k.AppendDigits(nil)
}
