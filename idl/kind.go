package idl

// Kind discriminates the closed set of type descriptors.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindText
	KindReserved
	KindEmpty
	KindNumber
	KindPrincipal
	KindOpt
	KindVec
	KindTuple
	KindRecord
	KindVariant
	KindRec
	KindFunc
	KindService
)

var kindNames = [...]string{
	KindNull:      "null",
	KindBool:      "bool",
	KindText:      "text",
	KindReserved:  "reserved",
	KindEmpty:     "empty",
	KindNumber:    "number",
	KindPrincipal: "principal",
	KindOpt:       "opt",
	KindVec:       "vec",
	KindTuple:     "tuple",
	KindRecord:    "record",
	KindVariant:   "variant",
	KindRec:       "rec",
	KindFunc:      "func",
	KindService:   "service",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsComposite reports whether the kind recurses into child types when
// traversing values.
func (k Kind) IsComposite() bool {
	switch k {
	case KindOpt, KindVec, KindTuple, KindRecord, KindVariant, KindRec:
		return true
	default:
		return false
	}
}

// NumberFamily distinguishes the numeric descriptors.
type NumberFamily uint8

const (
	FamilyNat NumberFamily = iota
	FamilyInt
	FamilyFloat
	FamilyFixedNat
	FamilyFixedInt
)

var familyNames = [...]string{
	FamilyNat:      "nat",
	FamilyInt:      "int",
	FamilyFloat:    "float",
	FamilyFixedNat: "nat",
	FamilyFixedInt: "int",
}

func (f NumberFamily) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return "unknown"
}
