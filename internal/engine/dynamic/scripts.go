// internal/engine/dynamic/scripts.go
package dynamic

import (
	"fmt"
	"strconv"
)

// linksHandle is the page global holding the links snapshotted for activation.
const linksHandle = "__datalayerLinks"

// scrollScript resolves once the scrolled distance reaches the body height.
// The height is re-read on every tick so lazily appended content extends it.
func scrollScript(step int, intervalMs int64) string {
	return fmt.Sprintf(`new Promise((resolve) => {
	let total = 0;
	const timer = setInterval(() => {
		const height = document.body ? document.body.scrollHeight : 0;
		window.scrollBy(0, %[1]d);
		total += %[1]d;
		if (total >= height) {
			clearInterval(timer);
			resolve(total);
		}
	}, %[2]d);
})`, step, intervalMs)
}

// collectLinksScript stores every link present right now and returns how many.
func collectLinksScript() string {
	return fmt.Sprintf(`(() => {
	window.%[1]s = Array.from(document.querySelectorAll('a'));
	return window.%[1]s.length;
})()`, linksHandle)
}

// activateLinkScript clicks the i-th stored link with navigation suppressed.
func activateLinkScript(i int) string {
	return fmt.Sprintf(`((i) => {
	const link = (window.%s || [])[i];
	if (!link) {
		return false;
	}
	link.addEventListener('click', (event) => event.preventDefault());
	link.click();
	return true;
})(%d)`, linksHandle, i)
}

// queueLengthScript returns the current queue length, or -1 when absent.
func queueLengthScript(queue string) string {
	return fmt.Sprintf(`(() => {
	const queue = window[%s];
	return Array.isArray(queue) ? queue.length : -1;
})()`, strconv.Quote(queue))
}
