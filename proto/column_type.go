package proto

import "strings"

// ColumnType represents a ClickHouse type specification, e.g. "UInt8" or
// "Array(Nullable(String))".
type ColumnType string

// Scalar and container base types recognised by the codec.
const (
	ColumnTypeNone  ColumnType = ""
	ColumnTypeInt8  ColumnType = "Int8"
	ColumnTypeInt16 ColumnType = "Int16"
	ColumnTypeInt32 ColumnType = "Int32"
	ColumnTypeInt64 ColumnType = "Int64"

	ColumnTypeInt128 ColumnType = "Int128"
	ColumnTypeInt256 ColumnType = "Int256"

	ColumnTypeUInt8  ColumnType = "UInt8"
	ColumnTypeUInt16 ColumnType = "UInt16"
	ColumnTypeUInt32 ColumnType = "UInt32"
	ColumnTypeUInt64 ColumnType = "UInt64"

	ColumnTypeUInt128 ColumnType = "UInt128"
	ColumnTypeUInt256 ColumnType = "UInt256"

	ColumnTypeFloat32 ColumnType = "Float32"
	ColumnTypeFloat64 ColumnType = "Float64"

	ColumnTypeBool ColumnType = "Bool"

	ColumnTypeString      ColumnType = "String"
	ColumnTypeFixedString ColumnType = "FixedString"

	ColumnTypeUUID ColumnType = "UUID"

	ColumnTypeDate       ColumnType = "Date"
	ColumnTypeDate32     ColumnType = "Date32"
	ColumnTypeDateTime   ColumnType = "DateTime"
	ColumnTypeDateTime64 ColumnType = "DateTime64"

	ColumnTypeIPv4 ColumnType = "IPv4"
	ColumnTypeIPv6 ColumnType = "IPv6"

	ColumnTypeEnum8  ColumnType = "Enum8"
	ColumnTypeEnum16 ColumnType = "Enum16"

	ColumnTypeDecimal32  ColumnType = "Decimal32"
	ColumnTypeDecimal64  ColumnType = "Decimal64"
	ColumnTypeDecimal128 ColumnType = "Decimal128"
	ColumnTypeDecimal256 ColumnType = "Decimal256"
	ColumnTypeDecimal    ColumnType = "Decimal"

	ColumnTypeArray          ColumnType = "Array"
	ColumnTypeNullable       ColumnType = "Nullable"
	ColumnTypeTuple          ColumnType = "Tuple"
	ColumnTypeMap            ColumnType = "Map"
	ColumnTypeLowCardinality ColumnType = "LowCardinality"
)

// String implements fmt.Stringer.
func (c ColumnType) String() string { return string(c) }

// With parenthesizes args after the type, e.g. FixedString.With("128").
func (c ColumnType) With(args ...string) ColumnType {
	return ColumnType(string(c) + "(" + strings.Join(args, ", ") + ")")
}

// Sub wraps sub as the single parameter of c, e.g.
// ColumnTypeArray.Sub(ColumnTypeInt32) == "Array(Int32)".
func (c ColumnType) Sub(sub ColumnType) ColumnType {
	return ColumnType(string(c) + "(" + string(sub) + ")")
}

// Array wraps c as the element type of an Array, e.g.
// ColumnTypeInt16.Array() == "Array(Int16)".
func (c ColumnType) Array() ColumnType {
	return ColumnTypeArray.Sub(c)
}

// Base returns the type name with any parenthesized arguments stripped.
func (c ColumnType) Base() ColumnType {
	if i := strings.IndexByte(string(c), '('); i >= 0 {
		return c[:i]
	}
	return c
}

// Args returns the raw text between the outermost parens, or "" if c has
// none.
func (c ColumnType) Args() string {
	s := string(c)
	i := strings.IndexByte(s, '(')
	if i < 0 || !strings.HasSuffix(s, ")") {
		return ""
	}
	return s[i+1 : len(s)-1]
}

// IsArray reports whether c is Array(...).
func (c ColumnType) IsArray() bool {
	return c.Base() == ColumnTypeArray && strings.HasSuffix(string(c), ")")
}

// Elem returns the element type of an Array(...) column, or ColumnTypeNone
// if c is not an array.
func (c ColumnType) Elem() ColumnType {
	if !c.IsArray() {
		return ColumnTypeNone
	}
	return ColumnType(c.Args())
}

// splitTopLevel splits s on commas that are not nested inside parens.
func splitTopLevel(s string) []string {
	if s == "" {
		return nil
	}
	var (
		out   []string
		depth int
		last  int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	out = append(out, s[last:])
	for i, v := range out {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// normalize collapses insignificant whitespace so "Map(String,String)" and
// "Map(String, String)" compare equal.
func normalize(c ColumnType) ColumnType {
	return ColumnType(strings.Join(splitFlat(string(c)), ""))
}

// splitFlat tokenizes, trimming whitespace adjacent to commas/parens, without
// touching string literals inside Enum(...) definitions.
func splitFlat(s string) []string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			// Drop spaces that sit next to a comma or paren; Enum literal
			// spaces (inside quotes) are rare in type specs used for
			// conflict checks and are left as-is if ever present.
			prevComma := b.Len() > 0 && (b.String()[b.Len()-1] == ',' || b.String()[b.Len()-1] == '(')
			nextIsBoundary := i+1 < len(s) && (s[i+1] == ',' || s[i+1] == ')')
			if prevComma || nextIsBoundary {
				continue
			}
		}
		b.WriteByte(c)
	}
	return []string{b.String()}
}

// decimalAliases maps a fixed-width decimal alias to its canonical
// Decimal(precision, scale) form, and vice versa, so e.g. Decimal256 and
// Decimal(76, 38) are treated as the same type.
var decimalAliases = map[ColumnType]ColumnType{
	ColumnTypeDecimal32:  "Decimal(9, 0)",
	ColumnTypeDecimal64:  "Decimal(18, 0)",
	ColumnTypeDecimal128: "Decimal(38, 0)",
	ColumnTypeDecimal256: "Decimal(76, 38)",
}

// intLikeAliases groups an Enum width with its underlying integer type:
// ClickHouse permits comparing/assigning between them.
var intLikeAliases = map[ColumnType]ColumnType{
	ColumnTypeEnum8:  ColumnTypeInt8,
	ColumnTypeEnum16: ColumnTypeInt16,
}

func baseEquivalent(a, b ColumnType) bool {
	if a == b {
		return true
	}
	if alias, ok := intLikeAliases[a]; ok && alias == b {
		return true
	}
	if alias, ok := intLikeAliases[b]; ok && alias == a {
		return true
	}
	return false
}

// Conflicts reports whether c and other cannot both describe the same
// column: different base types (other than known aliases), or structurally
// incompatible element types for containers. Arguments that don't affect
// wire compatibility (DateTime timezone, DateTime64/Decimal precision,
// Enum value mappings) are ignored.
func (c ColumnType) Conflicts(other ColumnType) bool {
	a, b := normalize(c), normalize(other)
	if a == b {
		return false
	}
	if canon, ok := decimalAliases[a]; ok && normalize(canon) == b {
		return false
	}
	if canon, ok := decimalAliases[b]; ok && normalize(canon) == a {
		return false
	}

	ba, bb := a.Base(), b.Base()
	if !baseEquivalent(ba, bb) {
		return true
	}

	switch ba {
	case ColumnTypeArray, ColumnTypeNullable, ColumnTypeLowCardinality:
		ea, eb := a.Args(), b.Args()
		if ea == "" || eb == "" {
			return false
		}
		return ColumnType(ea).Conflicts(ColumnType(eb))
	case ColumnTypeMap, ColumnTypeTuple:
		pa, pb := splitTopLevel(a.Args()), splitTopLevel(b.Args())
		if len(pa) == 0 || len(pb) == 0 {
			return false
		}
		if len(pa) != len(pb) {
			return true
		}
		for i := range pa {
			if ColumnType(pa[i]).Conflicts(ColumnType(pb[i])) {
				return true
			}
		}
		return false
	default:
		// Same base, different (or absent) arguments that don't affect
		// wire layout (timezone, precision, enum value names, string
		// width handled separately by FixedString callers).
		return false
	}
}
