// Copyright 2026 The bierverify Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bier contains the BIER bit-string representation shared by the
// mapping and verification packages.
package bier

import (
	"math/big"
	"strings"

	"github.com/bierproto/bierverify/pkg/private/serrors"
)

// BitString is an unsigned integer whose bit p set to 1 authorizes bit
// position p. Bit 0 is the least significant bit. The zero value is the empty
// bit-string.
type BitString struct {
	v big.Int
}

// NewBitString returns a bit-string with the given positions set.
func NewBitString(positions ...uint) BitString {
	var b BitString
	for _, p := range positions {
		b.v.SetBit(&b.v, int(p), 1)
	}
	return b
}

// FromUint64 returns the bit-string with the value v.
func FromUint64(v uint64) BitString {
	var b BitString
	b.v.SetUint64(v)
	return b
}

// ParseBitString parses a bit-string. Hexadecimal is the default notation, the
// "0x" prefix is optional. A "0b" prefix selects binary and "0d" decimal.
// Underscores may be used as digit separators.
func ParseBitString(s string) (BitString, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	base := 16
	digits := raw
	switch lower := strings.ToLower(raw); {
	case strings.HasPrefix(lower, "0x"):
		digits = raw[2:]
	case strings.HasPrefix(lower, "0b"):
		base, digits = 2, raw[2:]
	case strings.HasPrefix(lower, "0d"):
		base, digits = 10, raw[2:]
	}
	var b BitString
	if digits == "" {
		return b, serrors.New("empty bit-string", "input", s)
	}
	if _, ok := b.v.SetString(digits, base); !ok || b.v.Sign() < 0 {
		return BitString{}, serrors.New("invalid bit-string", "input", s, "base", base)
	}
	return b, nil
}

// MustParseBitString parses s and panics on error. It is intended for tests.
func MustParseBitString(s string) BitString {
	b, err := ParseBitString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// IsSet reports whether bit position p is set.
func (b BitString) IsSet(p uint) bool {
	return b.v.Bit(int(p)) == 1
}

// IsZero reports whether no bit is set.
func (b BitString) IsZero() bool {
	return b.v.Sign() == 0
}

// Len returns the number of positions that have to be evaluated to cover the
// bit-string: one past the most significant set bit, i.e. the smallest n with
// b >> n == 0.
func (b BitString) Len() uint {
	return uint(b.v.BitLen())
}

// Positions returns the positions p for which b >> p > 0, in ascending order.
// Unset positions below the most significant set bit are included.
func (b BitString) Positions() []uint {
	n := b.Len()
	ps := make([]uint, n)
	for p := uint(0); p < n; p++ {
		ps[p] = p
	}
	return ps
}

// SetPositions returns the set positions in ascending order.
func (b BitString) SetPositions() []uint {
	var ps []uint
	for p := uint(0); p < b.Len(); p++ {
		if b.IsSet(p) {
			ps = append(ps, p)
		}
	}
	return ps
}

// String formats the bit-string in hexadecimal with a 0x prefix.
func (b BitString) String() string {
	return "0x" + b.v.Text(16)
}

// MarshalText implements encoding.TextMarshaler.
func (b BitString) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BitString) UnmarshalText(text []byte) error {
	parsed, err := ParseBitString(string(text))
	if err != nil {
		return err
	}
	b.v.Set(&parsed.v)
	return nil
}
