package datalayer

// Separator joins a field name to its ancestor chain.
const Separator = "_"

// Flatten collapses a nested value into a Record whose keys are the path of
// each leaf joined by Separator and prefixed with prefix. Nulls are leaves;
// arrays are walked like objects with their indexes as key segments.
// A scalar passed at the top level is stored under prefix itself.
func Flatten(v Value, prefix string) *Record {
	out := NewRecord()
	if !v.IsComposite() {
		if prefix != "" {
			out.Set(prefix, v)
		}
		return out
	}

	for _, f := range v.fields {
		key := qualify(prefix, f.Key)
		if f.Value.IsComposite() {
			out.Merge(Flatten(f.Value, key))
			continue
		}
		out.Set(key, f.Value)
	}
	return out
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + Separator + name
}
