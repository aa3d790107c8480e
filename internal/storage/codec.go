package storage

import (
	"strconv"
	"strings"

	"github.com/minirel/minirel/pkg/types"
)

// Row wire format: one encoded field per column in schema order,
// comma-separated, newline-terminated. Nil encodes as the literal NULL.
// The only escape is a backslash before a literal comma inside a string;
// newlines and backslashes within strings produce undefined results.

const nullLiteral = "NULL"

// EncodeRow renders a row's values as a single table-file line (without the
// trailing newline). Columns absent from the map encode as NULL.
func EncodeRow(schema *types.TableSchema, values map[string]interface{}) string {
	fields := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		fields[i] = encodeField(values[col.Name])
	}
	return strings.Join(fields, ",")
}

// encodeField renders a single value, escaping literal commas.
func encodeField(v interface{}) string {
	if v == nil {
		return nullLiteral
	}
	return strings.ReplaceAll(types.FormatValue(v), ",", "\\,")
}

// DecodeRow parses one table-file line under the given schema. Fields are
// zipped against schema order; a short line leaves trailing columns absent.
func DecodeRow(schema *types.TableSchema, line string) (map[string]interface{}, error) {
	fields := splitFields(line)
	values := make(map[string]interface{}, len(fields))

	for i, col := range schema.Columns {
		if i >= len(fields) {
			break
		}
		v, err := decodeField(col, fields[i])
		if err != nil {
			return nil, err
		}
		values[col.Name] = v
	}
	return values, nil
}

// splitFields splits on commas, honoring the backslash escape.
func splitFields(line string) []string {
	var fields []string
	var sb strings.Builder

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '\\' && i+1 < len(line) && line[i+1] == ',':
			sb.WriteByte(',')
			i++
		case ch == ',':
			fields = append(fields, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(ch)
		}
	}
	fields = append(fields, sb.String())
	return fields
}

// decodeField converts a raw field back into a typed value.
func decodeField(col *types.Column, raw string) (interface{}, error) {
	if raw == nullLiteral {
		return nil, nil
	}
	switch col.Type {
	case types.TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	case types.TypeBoolean:
		return strings.EqualFold(raw, "true"), nil
	default:
		// VARCHAR and DATE are stored as strings.
		return raw, nil
	}
}
