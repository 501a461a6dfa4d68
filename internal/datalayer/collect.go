package datalayer

// Options selects and shapes the records pulled out of a snapshot.
type Options struct {
	// PayloadKey names the top-level field holding the tracked payload.
	PayloadKey string
	// Keywords are matched as substrings of the event name.
	Keywords []string
	// InteractionEvent is the event name whose element sub-object is
	// promoted into dedicated columns.
	InteractionEvent string
}

// Element fields promoted for interaction events.
var elementFields = []string{"name", "label", "url"}

// Collect filters snapshot and flattens each selected entry into a Record.
// The event name comes first, followed by the flattened payload.
func Collect(snapshot Value, opts Options) []*Record {
	entries := Filter(snapshot, opts.PayloadKey, opts.Keywords)
	records := make([]*Record, 0, len(entries))

	for _, entry := range entries {
		ev, _ := entry.Field(EventKey)
		payload, _ := entry.Field(opts.PayloadKey)

		rec := NewRecord()
		rec.Set(EventKey, ev)
		rec.Merge(Flatten(payload, opts.PayloadKey))

		if opts.InteractionEvent != "" && ev.Str() == opts.InteractionEvent {
			enrichElement(rec, payload, opts.PayloadKey)
		}
		records = append(records, rec)
	}
	return records
}

func enrichElement(rec *Record, payload Value, payloadKey string) {
	element, ok := payload.Field("element")
	if !ok || element.Kind() != KindObject {
		return
	}
	for _, name := range elementFields {
		v := element.FieldOr(name, String(""))
		if v.IsComposite() {
			v = String("")
		}
		rec.Set(qualify(payloadKey, "element"+Separator+name), v)
	}
}
