package plan

import "object-mapper/internal/common"

// Kind is the variant of a plan Node.
type Kind int

const (
	KindUnknown Kind = iota
	KindCopy
	KindConvert
	KindNullable
	KindEnum
	KindStruct
	KindReference
	KindCollection
	KindDictionary
	KindDynamic
	KindCustom

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

var kindNames = [...]string{
	KindUnknown:    common.UnknownStr,
	KindCopy:       "copy",
	KindConvert:    "convert",
	KindNullable:   "nullable",
	KindEnum:       "enum",
	KindStruct:     "struct",
	KindReference:  "reference",
	KindCollection: "collection",
	KindDictionary: "dictionary",
	KindDynamic:    "dynamic",
	KindCustom:     "custom",
}

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= KindTotal {
		return common.UnknownStr
	}

	return kindNames[k]
}
