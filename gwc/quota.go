// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package gwc holds the configuration documents of GeoWebCache, the
// tile cache embedded in GeoServer: disk quotas, seed and truncate
// requests, seed task status, and cached layer settings.  Each
// document encodes to the XML the GeoWebCache REST API accepts, and
// disk quotas additionally have a JSON form.
//
// Quotas are byte counts of arbitrary size.  Conversions between
// storage units are exact: values are kept as *big.Int byte counts
// and *big.Rat unit values, never floating point.
package gwc

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
)

// StorageUnit is a binary multiple of a byte.
type StorageUnit int

// The storage units GeoWebCache understands, each 1024 times the
// previous.
const (
	B StorageUnit = iota
	KiB
	MiB
	GiB
	TiB
	PiB
	EiB
	ZiB
	YiB
)

var unitNames = [...]string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}

// ErrInvalidUnit is returned when parsing an unknown storage unit name.
var ErrInvalidUnit = errors.New("invalid storage unit")

// ErrInvalidQuota is returned when a quota value cannot be parsed.
var ErrInvalidQuota = errors.New("invalid quota")

// Valid reports whether u is one of the defined units.
func (u StorageUnit) Valid() bool {
	return u >= B && u <= YiB
}

func (u StorageUnit) String() string {
	if !u.Valid() {
		return fmt.Sprintf("StorageUnit(%d)", int(u))
	}
	return unitNames[u]
}

// Bytes returns the number of bytes in one u.
func (u StorageUnit) Bytes() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(10*u))
}

// Convert expresses value, measured in u, in the unit to.
func (u StorageUnit) Convert(value *big.Rat, to StorageUnit) *big.Rat {
	factor := new(big.Rat).SetFrac(u.Bytes(), to.Bytes())
	return factor.Mul(factor, value)
}

// MarshalText returns the unit name.
func (u StorageUnit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidUnit, int(u))
	}
	return []byte(unitNames[u]), nil
}

// UnmarshalText parses a unit name.
func (u *StorageUnit) UnmarshalText(text []byte) error {
	parsed, err := ParseStorageUnit(string(text))
	if err == nil {
		*u = parsed
	}
	return err
}

// ParseStorageUnit parses a unit name such as "MiB".  Matching is
// exact, except that a bare "B" may also be written "bytes".
func ParseStorageUnit(s string) (StorageUnit, error) {
	s = strings.TrimSpace(s)
	for i, name := range unitNames {
		if s == name {
			return StorageUnit(i), nil
		}
	}
	if strings.EqualFold(s, "bytes") {
		return B, nil
	}
	return B, fmt.Errorf("%w %q", ErrInvalidUnit, s)
}

// BestFit returns the largest unit in which bytes is at least 1.
// Zero and negative counts fit in B.
func BestFit(bytes *big.Int) StorageUnit {
	abs := new(big.Int).Abs(bytes)
	unit := B
	for next := KiB; next <= YiB; next++ {
		if abs.Cmp(next.Bytes()) < 0 {
			break
		}
		unit = next
	}
	return unit
}

// Quota is an amount of storage.  The zero value is zero bytes.
type Quota struct {
	bytes *big.Int
}

// NewQuota returns a quota of exactly bytes bytes.
func NewQuota(bytes *big.Int) Quota {
	return Quota{bytes: new(big.Int).Set(bytes)}
}

// QuotaOf builds a quota from a decimal value in some unit, for
// instance QuotaOf("1.5", GiB).  Fractions of a byte are truncated.
func QuotaOf(value string, unit StorageUnit) (Quota, error) {
	if !unit.Valid() {
		return Quota{}, fmt.Errorf("%w: %d", ErrInvalidUnit, int(unit))
	}
	r, ok := new(big.Rat).SetString(strings.TrimSpace(value))
	if !ok {
		return Quota{}, fmt.Errorf("%w: value %q", ErrInvalidQuota, value)
	}
	r.Mul(r, new(big.Rat).SetInt(unit.Bytes()))
	return Quota{bytes: new(big.Int).Quo(r.Num(), r.Denom())}, nil
}

// ParseQuota parses human-written sizes.  "1.5 GiB" and "500MiB" use
// the binary units above exactly; anything else, such as "2 GB" or
// "300 kB", is handed to go-humanize, which also understands decimal
// SI units.
func ParseQuota(s string) (Quota, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quota{}, fmt.Errorf("%w: empty", ErrInvalidQuota)
	}
	split := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != '-' && r != '+'
	})
	if split > 0 {
		if unit, err := ParseStorageUnit(s[split:]); err == nil {
			return QuotaOf(s[:split], unit)
		}
	}
	bytes, err := humanize.ParseBigBytes(s)
	if err != nil {
		return Quota{}, fmt.Errorf("%w: %v", ErrInvalidQuota, err)
	}
	return Quota{bytes: bytes}, nil
}

// Bytes returns a copy of the byte count.
func (q Quota) Bytes() *big.Int {
	if q.bytes == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(q.bytes)
}

// IsZero reports whether q is zero bytes.
func (q Quota) IsZero() bool {
	return q.bytes == nil || q.bytes.Sign() == 0
}

// ValueIn returns q measured in unit.
func (q Quota) ValueIn(unit StorageUnit) *big.Rat {
	return B.Convert(new(big.Rat).SetInt(q.Bytes()), unit)
}

// BestFit returns the unit q is most naturally written in.
func (q Quota) BestFit() StorageUnit {
	return BestFit(q.Bytes())
}

// Value returns q in its best-fit unit as an exact decimal string,
// with no trailing zeros.
func (q Quota) Value() (string, StorageUnit) {
	unit := q.BestFit()
	// 1/1024^n has exactly 10n decimal digits, so this never rounds.
	return trimDecimal(q.ValueIn(unit).FloatString(10 * int(unit))), unit
}

// String renders q in its best-fit unit with at most two decimals,
// for instance "1.5 GiB".
func (q Quota) String() string {
	unit := q.BestFit()
	s := q.ValueIn(unit).FloatString(2)
	// Rounding can carry into the next unit, as 1048575 B does.
	if r, ok := new(big.Rat).SetString(s); ok && unit < YiB && r.Abs(r).Cmp(big.NewRat(1024, 1)) >= 0 {
		unit++
		s = q.ValueIn(unit).FloatString(2)
	}
	return trimDecimal(s) + " " + unit.String()
}

// Add returns q + other.
func (q Quota) Add(other Quota) Quota {
	return Quota{bytes: new(big.Int).Add(q.Bytes(), other.Bytes())}
}

// Subtract returns q - other.  The result may be negative.
func (q Quota) Subtract(other Quota) Quota {
	return Quota{bytes: new(big.Int).Sub(q.Bytes(), other.Bytes())}
}

// Cmp compares two quotas as big.Int.Cmp does.
func (q Quota) Cmp(other Quota) int {
	return q.Bytes().Cmp(other.Bytes())
}

func trimDecimal(s string) string {
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
