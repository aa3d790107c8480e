package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minirel/minirel/pkg/types"
)

func testSchema() *types.TableSchema {
	length := 50
	return types.NewTableSchema("users", []*types.Column{
		{Name: "id", Type: types.TypeInteger, PrimaryKey: true, Unique: true, Nullable: true},
		{Name: "name", Type: types.TypeVarchar, Length: &length, Nullable: true},
		{Name: "active", Type: types.TypeBoolean, Nullable: true},
	})
}

func TestEncodeRow(t *testing.T) {
	schema := testSchema()

	tests := []struct {
		name   string
		values map[string]interface{}
		want   string
	}{
		{
			"all values",
			map[string]interface{}{"id": int64(1), "name": "Alice", "active": true},
			"1,Alice,true",
		},
		{
			"null value",
			map[string]interface{}{"id": int64(2), "name": nil, "active": false},
			"2,NULL,false",
		},
		{
			"missing column encodes as NULL",
			map[string]interface{}{"id": int64(3)},
			"3,NULL,NULL",
		},
		{
			"comma is escaped",
			map[string]interface{}{"id": int64(4), "name": "Doe, Jane", "active": true},
			"4,Doe\\, Jane,true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeRow(schema, tt.values))
		})
	}
}

func TestDecodeRow(t *testing.T) {
	schema := testSchema()

	values, err := DecodeRow(schema, "1,Alice,true")
	require.NoError(t, err)
	assert.Equal(t, int64(1), values["id"])
	assert.Equal(t, "Alice", values["name"])
	assert.Equal(t, true, values["active"])
}

func TestDecodeRow_EscapedComma(t *testing.T) {
	schema := testSchema()

	values, err := DecodeRow(schema, "4,Doe\\, Jane,true")
	require.NoError(t, err)
	assert.Equal(t, "Doe, Jane", values["name"])
}

func TestDecodeRow_Null(t *testing.T) {
	schema := testSchema()

	values, err := DecodeRow(schema, "2,NULL,false")
	require.NoError(t, err)
	assert.Nil(t, values["name"])
	assert.Equal(t, false, values["active"])
}

func TestDecodeRow_BooleanCaseInsensitive(t *testing.T) {
	schema := testSchema()

	values, err := DecodeRow(schema, "1,Alice,TRUE")
	require.NoError(t, err)
	assert.Equal(t, true, values["active"])

	values, err = DecodeRow(schema, "1,Alice,yes")
	require.NoError(t, err)
	assert.Equal(t, false, values["active"])
}

func TestDecodeRow_BadInteger(t *testing.T) {
	schema := testSchema()

	_, err := DecodeRow(schema, "notanumber,Alice,true")
	assert.Error(t, err)
}

func TestRowRoundTrip(t *testing.T) {
	schema := testSchema()
	values := map[string]interface{}{
		"id":     int64(42),
		"name":   "a, b, and c",
		"active": true,
	}

	decoded, err := DecodeRow(schema, EncodeRow(schema, values))
	require.NoError(t, err)
	assert.Equal(t, values, decoded)
}
