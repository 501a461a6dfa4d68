package engine

import (
	"fmt"
	"strconv"
)

// DefaultQueueName is the window property analytics tags push events onto.
const DefaultQueueName = "dataLayer"

// SnapshotScript returns a JavaScript expression that serializes the named
// queue to a JSON string. Entries are serialized one by one so a single
// unserializable entry (cyclic, DOM-heavy) becomes null instead of failing
// the whole read. A missing or non-array queue yields "null".
func SnapshotScript(queue string) string {
	return fmt.Sprintf(`(() => {
	const queue = window[%s];
	if (!Array.isArray(queue)) {
		return 'null';
	}
	const parts = queue.map((entry) => {
		try {
			const json = JSON.stringify(entry);
			return json === undefined ? 'null' : json;
		} catch (e) {
			return 'null';
		}
	});
	return '[' + parts.join(',') + ']';
})()`, strconv.Quote(queue))
}
