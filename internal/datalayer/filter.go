package datalayer

import "strings"

// EventKey is the field every queue entry uses to name its event.
const EventKey = "event"

// Filter returns the entries of snapshot whose event name contains at least
// one of keywords and which own payloadKey. Matching is a case-sensitive
// substring test. A snapshot that is not an array yields no entries.
func Filter(snapshot Value, payloadKey string, keywords []string) []Value {
	out := make([]Value, 0)
	if snapshot.Kind() != KindArray {
		return out
	}

	for _, entry := range snapshot.fields {
		name, ok := eventName(entry.Value)
		if !ok {
			continue
		}
		if _, ok := entry.Value.Field(payloadKey); !ok {
			continue
		}
		if !containsAny(name, keywords) {
			continue
		}
		out = append(out, entry.Value)
	}
	return out
}

func eventName(entry Value) (string, bool) {
	ev, ok := entry.Field(EventKey)
	if !ok || ev.Kind() != KindString || ev.Str() == "" {
		return "", false
	}
	return ev.Str(), true
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
