package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockroom/internal/document"
)

func parseRecord(t *testing.T, raw string) *document.Record {
	t.Helper()
	rec := document.NewRecord()
	require.NoError(t, json.Unmarshal([]byte(raw), rec))
	return rec
}

func TestStringField_GetSet(t *testing.T) {
	rec := parseRecord(t, `{"name":"bolt"}`)

	f := StringField("name")
	got, err := f.Get(rec)
	require.NoError(t, err)
	assert.Equal(t, "bolt", got)
	assert.Equal(t, "bolt", f.Value())

	f.SetValue("nut")
	f.Set(rec)
	v, _ := rec.Get("name")
	s, _ := v.AsString()
	assert.Equal(t, "nut", s)
}

func TestIntField_DecodesDecimalString(t *testing.T) {
	rec := parseRecord(t, `{"stock":"12"}`)

	f := IntField("stock")
	got, err := f.Get(rec)
	require.NoError(t, err)
	assert.Equal(t, 12, got)
}

func TestIntField_EncodesAsDecimalString(t *testing.T) {
	rec := parseRecord(t, `{"stock":"12"}`)

	f := IntField("stock")
	f.SetValue(7)
	f.Set(rec)

	v, _ := rec.Get("stock")
	s, _ := v.AsString()
	assert.Equal(t, "7", s)
}

func TestIntField_MalformedValue(t *testing.T) {
	rec := parseRecord(t, `{"stock":"dozen"}`)

	f := IntField("stock")
	_, err := f.Get(rec)
	require.Error(t, err)
	assert.True(t, IsParse(err), "expected a ParseError, got %v", err)
}

func TestField_MissingAttribute(t *testing.T) {
	rec := parseRecord(t, `{"name":"bolt"}`)

	f := IntField("stock")
	_, err := f.Get(rec)
	require.Error(t, err)
	assert.True(t, IsParse(err))
}

func TestField_CustomCodec(t *testing.T) {
	rec := parseRecord(t, `{"tags":"a,b"}`)

	f := NewField("tags", Codec[[]string]{
		Decode: func(v document.Value) ([]string, error) {
			s, _ := v.AsString()
			return []string{s}, nil
		},
		Encode: func(tags []string) document.Value {
			return document.String(tags[0])
		},
	})
	got, err := f.Get(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"a,b"}, got)
}
