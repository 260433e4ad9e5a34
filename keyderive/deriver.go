package keyderive

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-reflect"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/karupanerura/named-cache/internal/keyhash"
)

// ErrUnsupportedArg is returned for arguments that have no stable encoding, such as functions and channels.
var ErrUnsupportedArg = errors.New("argument cannot be part of a cache key")

// Deriver derives cache item keys from a method reference and its captured arguments.
//
// The key has the shape "Type.Method(arg1,arg2)". Scalars are written literally, strings quoted.
// Composite arguments are replaced by "#" followed by the xxhash64 of their msgpack encoding with sorted
// map keys, so equal values always produce the same key.
type Deriver struct{}

// Default is the deriver used when none is configured.
var Default = Deriver{}

// DeriveKey returns the key of method on typeName called with args.
func (Deriver) DeriveKey(typeName, method string, args []any) (string, error) {
	if method == "" {
		return "", errors.New("method name is empty")
	}

	var sb strings.Builder
	if typeName != "" {
		sb.WriteString(typeName)
		sb.WriteByte('.')
	}
	sb.WriteString(method)
	sb.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		s, err := formatArg(arg)
		if err != nil {
			return "", errors.Wrapf(err, "argument %d of %s", i, method)
		}
		sb.WriteString(s)
	}
	sb.WriteByte(')')
	return sb.String(), nil
}

func formatArg(arg any) (string, error) {
	if arg == nil {
		return "nil", nil
	}

	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.String:
		return strconv.Quote(v.String()), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return "", errors.Wrapf(ErrUnsupportedArg, "kind %s", v.Kind())
	default:
		return digest(arg)
	}
}

func digest(arg any) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(arg); err != nil {
		return "", errors.Wrapf(ErrUnsupportedArg, "encode %T: %v", arg, err)
	}
	return "#" + keyhash.Digest(buf.Bytes()), nil
}
