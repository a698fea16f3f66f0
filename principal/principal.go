// Package principal implements the Internet Computer principal identifier
// and its canonical textual encoding.
//
// The textual form is the lowercase, unpadded base32 encoding of the CRC32
// checksum (big endian) followed by the raw bytes, grouped into runs of
// five characters separated by dashes:
//
//	raw []        -> "aaaaa-aa"   (management canister)
//	raw [0x04]    -> "2vxsx-fae"  (anonymous)
package principal

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
)

// MaxLength is the maximum length of a principal's raw bytes.
const MaxLength = 29

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal is an opaque identifier. The zero value is the management
// canister principal. Principals are comparable and usable as map keys.
type Principal struct {
	raw string
}

var (
	// Management is the principal of the management canister.
	Management = Principal{}
	// Anonymous is the principal used by unauthenticated callers.
	Anonymous = Principal{raw: "\x04"}
)

// FromBytes wraps raw identifier bytes.
func FromBytes(raw []byte) (Principal, error) {
	if len(raw) > MaxLength {
		return Principal{}, fmt.Errorf("principal too long: %d bytes (max %d)", len(raw), MaxLength)
	}
	return Principal{raw: string(raw)}, nil
}

// MustFromBytes is FromBytes that panics on error.
func MustFromBytes(raw []byte) Principal {
	p, err := FromBytes(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// FromText parses the canonical textual encoding. Only the canonical form
// is accepted: lowercase, dash grouped and with a matching checksum.
func FromText(text string) (Principal, error) {
	if text == "" {
		return Principal{}, fmt.Errorf("empty principal text")
	}
	compact := strings.ReplaceAll(text, "-", "")
	data, err := encoding.DecodeString(strings.ToUpper(compact))
	if err != nil {
		return Principal{}, fmt.Errorf("invalid principal %q: %w", text, err)
	}
	if len(data) < 4 {
		return Principal{}, fmt.Errorf("invalid principal %q: too short", text)
	}
	raw := data[4:]
	if binary.BigEndian.Uint32(data[:4]) != crc32.ChecksumIEEE(raw) {
		return Principal{}, fmt.Errorf("invalid principal %q: checksum mismatch", text)
	}
	p, err := FromBytes(raw)
	if err != nil {
		return Principal{}, err
	}
	if p.Text() != text {
		return Principal{}, fmt.Errorf("invalid principal %q: not in canonical form (%s)", text, p.Text())
	}
	return p, nil
}

// MustFromText is FromText that panics on error.
func MustFromText(text string) Principal {
	p, err := FromText(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns a copy of the raw identifier bytes.
func (p Principal) Bytes() []byte {
	return []byte(p.raw)
}

// Len returns the number of raw bytes.
func (p Principal) Len() int {
	return len(p.raw)
}

// Text returns the canonical textual encoding.
func (p Principal) Text() string {
	buf := make([]byte, 4+len(p.raw))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE([]byte(p.raw)))
	copy(buf[4:], p.raw)

	enc := strings.ToLower(encoding.EncodeToString(buf))
	var b strings.Builder
	b.Grow(len(enc) + len(enc)/5)
	for i := 0; i < len(enc); i += 5 {
		if i > 0 {
			b.WriteByte('-')
		}
		end := min(i+5, len(enc))
		b.WriteString(enc[i:end])
	}
	return b.String()
}

// String implements fmt.Stringer.
func (p Principal) String() string {
	return p.Text()
}

// IsAnonymous reports whether p is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return p == Anonymous
}

// MarshalText implements encoding.TextMarshaler.
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.Text()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Principal) UnmarshalText(text []byte) error {
	parsed, err := FromText(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
