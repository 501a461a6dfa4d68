package output

import (
	"io"

	json "github.com/json-iterator/go"

	"github.com/law-makers/datalayer/internal/datalayer"
	"github.com/law-makers/datalayer/internal/schema"
)

var jsonConfig = json.Config{
	IndentionStep: 2,
	EscapeHTML:    false,
}.Froze()

// WriteJSON writes the table as an array of objects whose members follow the
// header order. Scalars keep their JSON type.
func WriteJSON(w io.Writer, table *schema.Table) error {
	stream := json.NewStream(jsonConfig, w, 4096)

	if len(table.Rows) == 0 {
		stream.WriteEmptyArray()
	} else {
		stream.WriteArrayStart()
		for i, row := range table.Rows {
			if i > 0 {
				stream.WriteMore()
			}
			writeRow(stream, table, row)
		}
		stream.WriteArrayEnd()
	}
	stream.WriteRaw("\n")

	if err := stream.Flush(); err != nil {
		return err
	}
	return stream.Error
}

func writeRow(stream *json.Stream, table *schema.Table, row schema.Row) {
	stream.WriteObjectStart()
	for i, key := range table.Header.Keys() {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(key)
		v, _ := table.Get(row, key)
		writeScalar(stream, v)
	}
	stream.WriteObjectEnd()
}

func writeScalar(stream *json.Stream, v datalayer.Value) {
	switch v.Kind() {
	case datalayer.KindBool:
		stream.WriteBool(v.String() == "true")
	case datalayer.KindNumber:
		stream.WriteRaw(v.String())
	case datalayer.KindString:
		stream.WriteString(v.Str())
	default:
		stream.WriteNil()
	}
}
