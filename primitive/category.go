package primitive

import (
	"fmt"
	"strings"
)

// CategoryEnum is a bitmask of conversion families a Registry may use.
type CategoryEnum int

type ConversionPair struct {
	From, To KindEnum
}

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // int, uint, float without precision loss
	CategoryUnsafeNumber                          // int, uint, float with precision loss
	CategoryTextNumber                            // int, uint, float <-> string: textual number representation
	CategoryNumericBool                           // int <-> bool: 0, 1 representation of boolean values
	CategoryTextualBool                           // string <-> bool: yes, no, on, off, true, false representation of boolean values
	CategoryDatetime                              // string(RFC3339Nano) <-> time.Time: textual date and time representation
	CategoryTimestamp                             // int(Unix seconds) <-> time.Time: Unix timestamp representation
	CategoryDuration                              // string(2h45m) <-> time.Duration: textual duration representation
	CategoryNanoseconds                           // int(nanoseconds) <-> time.Duration: numerical (integer) duration representation
	CategorySeconds                               // float(seconds) <-> time.Duration: numerical (floating-point) duration representation
	CategoryEnumString                            // string <-> enum: textual representation of an enum type (uses registry/String/UnmarshalText)
	CategoryEnumNumber                            // int <-> enum: numeric representation of an integer enum type
	CategoryUUID                                  // string <-> uuid.UUID: canonical textual UUID representation

	CategoryAll  CategoryEnum = (1 << iota) - 1 // all categories combined
	CategoryNone CategoryEnum = 0               // no categories selected
)

type pairSet map[ConversionPair]struct{}

func (s pairSet) add(from, to KindEnum) {
	s[ConversionPair{from, to}] = struct{}{}
}

func (s pairSet) both(a, b KindEnum) {
	s.add(a, b)
	s.add(b, a)
}

var conversionPairs = buildConversionPairs()

func kindsWhere(pred func(KindEnum) bool) []KindEnum {
	var kinds []KindEnum

	for k := KindEnum(1); int(k) < KindTotal; k++ {
		if pred(k) {
			kinds = append(kinds, k)
		}
	}

	return kinds
}

func buildConversionPairs() map[CategoryEnum]pairSet {
	sets := make(map[CategoryEnum]pairSet)
	set := func(c CategoryEnum) pairSet {
		s := pairSet{}
		sets[c] = s

		return s
	}

	numbers := kindsWhere(KindEnum.IsNumber)
	integers := kindsWhere(KindEnum.IsInteger)

	safe, lossy := set(CategorySafeNumber), set(CategoryUnsafeNumber)
	for _, from := range numbers {
		for _, to := range numbers {
			if isLossless(from, to) {
				safe.add(from, to)
			} else {
				lossy.add(from, to)
			}
		}
	}

	text := set(CategoryTextNumber)
	for _, k := range numbers {
		text.both(k, KindString)
	}

	numericBool, timestamp, enumNumber, nanos := set(CategoryNumericBool), set(CategoryTimestamp),
		set(CategoryEnumNumber), set(CategoryNanoseconds)
	for _, k := range integers {
		numericBool.both(k, KindBool)
		timestamp.both(k, KindTime)
		enumNumber.both(k, KindPrimitiveEnum)

		// uint64 nanoseconds overflow time.Duration
		if k != KindUint64 {
			nanos.both(k, KindDuration)
		}
	}

	set(CategoryTextualBool).both(KindString, KindBool)
	set(CategoryDatetime).both(KindString, KindTime)
	set(CategoryDuration).both(KindString, KindDuration)
	set(CategoryUUID).both(KindString, KindUUID)

	seconds := set(CategorySeconds)
	seconds.both(KindFloat32, KindDuration)
	seconds.both(KindFloat64, KindDuration)

	enumString := set(CategoryEnumString)
	enumString.both(KindString, KindPrimitiveEnum)
	enumString.add(KindPrimitiveEnum, KindPrimitiveEnum)

	return sets
}

// isLossless reports whether every value of from fits into to.
// int and uint count as 64 bits wide when read and 32 bits wide when written.
func isLossless(from, to KindEnum) bool {
	if from == to {
		return true
	}

	switch {
	case from.IsFloat():
		return to.IsFloat() && to.Bits() >= from.Bits()
	case to.IsFloat():
		return sourceBits(from) <= mantissaBits(to)
	case from.IsSigned() && to.IsUnsigned():
		return false
	case from.IsUnsigned() && to.IsSigned():
		return sourceBits(from) < targetBits(to)
	default:
		return sourceBits(from) <= targetBits(to)
	}
}

func sourceBits(k KindEnum) int {
	if k == KindInt || k == KindUint {
		return 64
	}

	return k.Bits()
}

func targetBits(k KindEnum) int {
	if k == KindInt || k == KindUint {
		return 32
	}

	return k.Bits()
}

func mantissaBits(k KindEnum) int {
	if k == KindFloat32 {
		return 24
	}

	return 53
}

// Allows reports whether pair belongs to any of the categories selected in c.
func (c CategoryEnum) Allows(pair ConversionPair) bool {
	for category := CategoryEnum(1); category&CategoryAll > 0; category <<= 1 {
		if c&category == 0 {
			continue
		}

		if _, ok := conversionPairs[category][pair]; ok {
			return true
		}
	}

	return false
}

var categoryNames = map[string]CategoryEnum{
	"safe_number":   CategorySafeNumber,
	"unsafe_number": CategoryUnsafeNumber,
	"text_number":   CategoryTextNumber,
	"numeric_bool":  CategoryNumericBool,
	"textual_bool":  CategoryTextualBool,
	"datetime":      CategoryDatetime,
	"timestamp":     CategoryTimestamp,
	"duration":      CategoryDuration,
	"nanoseconds":   CategoryNanoseconds,
	"seconds":       CategorySeconds,
	"enum_string":   CategoryEnumString,
	"enum_number":   CategoryEnumNumber,
	"uuid":          CategoryUUID,
	"all":           CategoryAll,
	"none":          CategoryNone,
}

// ParseCategories combines named categories (e.g. "safe_number", "uuid", "all") into a mask.
func ParseCategories(names []string) (CategoryEnum, error) {
	var mask CategoryEnum

	for _, name := range names {
		category, ok := categoryNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return CategoryNone, fmt.Errorf("unknown conversion category %q", name)
		}

		mask |= category
	}

	return mask, nil
}
