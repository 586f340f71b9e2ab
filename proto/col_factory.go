package proto

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// ColumnFactory builds a fresh Column for the given type spec string, the
// recursive-descent interpreter referenced throughout this package: a type
// spec is parsed once into a concrete column codec, then driven purely by
// its Encode/DecodeColumn methods.
func ColumnFactory(typ ColumnType) (Column, error) {
	base := typ.Base()
	args := typ.Args()

	switch base {
	case ColumnTypeInt8:
		return NewColInt8(), nil
	case ColumnTypeUInt8:
		return NewColUInt8(), nil
	case ColumnTypeInt16:
		return NewColInt16(), nil
	case ColumnTypeUInt16:
		return NewColUInt16(), nil
	case ColumnTypeInt32:
		return NewColInt32(), nil
	case ColumnTypeUInt32:
		return NewColUInt32(), nil
	case ColumnTypeInt64:
		return NewColInt64(), nil
	case ColumnTypeUInt64:
		return NewColUInt64(), nil
	case ColumnTypeInt128:
		return NewColInt128(), nil
	case ColumnTypeUInt128:
		return NewColUInt128(), nil
	case ColumnTypeInt256:
		return NewColInt256(), nil
	case ColumnTypeUInt256:
		return NewColUInt256(), nil
	case ColumnTypeFloat32:
		return NewColFloat32(), nil
	case ColumnTypeFloat64:
		return NewColFloat64(), nil
	case ColumnTypeBool:
		return NewColBool(), nil
	case ColumnTypeString:
		return NewColStr(), nil
	case ColumnTypeFixedString:
		n, err := strconv.Atoi(strings.TrimSpace(args))
		if err != nil {
			return nil, errors.Wrapf(err, "FixedString width %q", args)
		}
		return NewColFixedString(n), nil
	case ColumnTypeUUID:
		return NewColUUID(), nil
	case ColumnTypeDate:
		return NewColDate(), nil
	case ColumnTypeDate32:
		return NewColDate32(), nil
	case ColumnTypeDateTime:
		return NewColDateTime(), nil
	case ColumnTypeDateTime64:
		precision, err := firstIntArg(args)
		if err != nil {
			return nil, errors.Wrapf(err, "DateTime64 precision %q", args)
		}
		return NewColDateTime64(precision), nil
	case ColumnTypeIPv4:
		return NewColIPv4(), nil
	case ColumnTypeIPv6:
		return NewColIPv6(), nil
	case ColumnTypeEnum8:
		return NewColEnum8(typ), nil
	case ColumnTypeEnum16:
		return NewColEnum16(typ), nil
	case ColumnTypeDecimal32:
		scale, err := firstIntArg(args)
		if err != nil {
			return nil, errors.Wrapf(err, "Decimal32 scale %q", args)
		}
		return NewColDecimal32(scale), nil
	case ColumnTypeDecimal64:
		scale, err := firstIntArg(args)
		if err != nil {
			return nil, errors.Wrapf(err, "Decimal64 scale %q", args)
		}
		return NewColDecimal64(scale), nil
	case ColumnTypeDecimal128:
		scale, err := firstIntArg(args)
		if err != nil {
			return nil, errors.Wrapf(err, "Decimal128 scale %q", args)
		}
		return NewColDecimal128(scale), nil
	case ColumnTypeDecimal256:
		scale, err := firstIntArg(args)
		if err != nil {
			return nil, errors.Wrapf(err, "Decimal256 scale %q", args)
		}
		return NewColDecimal256(scale), nil
	case ColumnTypeDecimal:
		parts := splitTopLevel(args)
		if len(parts) != 2 {
			return nil, errors.Errorf("Decimal(precision, scale) %q", args)
		}
		precision, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "Decimal precision %q", parts[0])
		}
		scale, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "Decimal scale %q", parts[1])
		}
		switch {
		case precision <= 9:
			return NewColDecimal32(scale), nil
		case precision <= 18:
			return NewColDecimal64(scale), nil
		case precision <= 38:
			return NewColDecimal128(scale), nil
		default:
			return NewColDecimal256(scale), nil
		}
	case ColumnTypeNullable:
		inner, err := ColumnFactory(ColumnType(args))
		if err != nil {
			return nil, errors.Wrap(err, "Nullable inner")
		}
		return NewColNullable(inner), nil
	case ColumnTypeArray:
		inner, err := ColumnFactory(ColumnType(args))
		if err != nil {
			return nil, errors.Wrap(err, "Array inner")
		}
		return NewColArr(inner), nil
	case ColumnTypeLowCardinality:
		inner, err := ColumnFactory(ColumnType(args))
		if err != nil {
			return nil, errors.Wrap(err, "LowCardinality inner")
		}
		return NewColLowCardinality(inner), nil
	case ColumnTypeMap:
		parts := splitTopLevel(args)
		if len(parts) != 2 {
			return nil, errors.Errorf("Map(K, V) %q", args)
		}
		key, err := ColumnFactory(ColumnType(parts[0]))
		if err != nil {
			return nil, errors.Wrap(err, "Map key")
		}
		val, err := ColumnFactory(ColumnType(parts[1]))
		if err != nil {
			return nil, errors.Wrap(err, "Map value")
		}
		return NewColMap(key, val), nil
	case ColumnTypeTuple:
		parts := splitTopLevel(args)
		elems := make([]Column, len(parts))
		for i, p := range parts {
			elem, err := ColumnFactory(ColumnType(p))
			if err != nil {
				return nil, errors.Wrapf(err, "Tuple elem %d", i)
			}
			elems[i] = elem
		}
		return NewColTuple(elems...), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%q", typ)
	}
}

// firstIntArg parses the leading comma-separated argument as an int,
// ignoring any trailing arguments (e.g. DateTime64's optional timezone).
func firstIntArg(args string) (int, error) {
	parts := splitTopLevel(args)
	if len(parts) == 0 {
		return 0, errors.New("missing argument")
	}
	return strconv.Atoi(strings.TrimSpace(parts[0]))
}
