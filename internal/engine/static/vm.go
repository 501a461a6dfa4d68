// internal/engine/static/vm.go
package static

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

// maxTimerRuns bounds how many timer callbacks one Settle may execute.
const maxTimerRuns = 1000

// documentStub gives inline tag snippets enough of a DOM to run their
// queue pushes. Anything touching real layout fails and is ignored.
const documentStub = `
var document = {
	location: location,
	title: '',
	cookie: '',
	referrer: '',
	readyState: 'complete',
	body: { scrollHeight: 0 },
	addEventListener: function () {},
	removeEventListener: function () {},
	querySelector: function () { return null; },
	querySelectorAll: function () { return []; },
	getElementById: function () { return null; },
	getElementsByTagName: function () { return []; },
	createElement: function () {
		return { style: {}, setAttribute: function () {}, appendChild: function () {} };
	}
};
window.addEventListener = function () {};
window.removeEventListener = function () {};
`

type timer struct {
	id     int64
	fireAt time.Duration
	every  time.Duration
	seq    int
	fn     goja.Callable
	args   []goja.Value
}

// pageVM is a goja runtime dressed up as a browser window. Timers run on a
// virtual clock that only advances in settle.
type pageVM struct {
	vm     *goja.Runtime
	now    time.Duration
	timers []*timer
	nextID int64
	seq    int
}

func newPageVM(pageURL, userAgent string) (*pageVM, error) {
	p := &pageVM{vm: goja.New()}
	vm := p.vm

	global := vm.GlobalObject()
	for _, name := range []string{"window", "self", "top", "parent"} {
		if err := vm.Set(name, global); err != nil {
			return nil, err
		}
	}

	loc := map[string]interface{}{"href": pageURL}
	if u, err := url.Parse(pageURL); err == nil {
		loc["protocol"] = u.Scheme + ":"
		loc["host"] = u.Host
		loc["hostname"] = u.Hostname()
		loc["pathname"] = u.EscapedPath()
		loc["search"] = ""
		if u.RawQuery != "" {
			loc["search"] = "?" + u.RawQuery
		}
		loc["hash"] = ""
		if u.Fragment != "" {
			loc["hash"] = "#" + u.Fragment
		}
	}

	setters := map[string]interface{}{
		"location":      loc,
		"navigator":     map[string]interface{}{"userAgent": userAgent, "language": "en-US"},
		"console":       p.console(),
		"setTimeout":    p.schedule(false),
		"setInterval":   p.schedule(true),
		"clearTimeout":  p.clear,
		"clearInterval": p.clear,
	}
	for name, v := range setters {
		if err := vm.Set(name, v); err != nil {
			return nil, fmt.Errorf("failed to install %s: %w", name, err)
		}
	}

	if _, err := vm.RunString(documentStub); err != nil {
		return nil, fmt.Errorf("failed to install document stub: %w", err)
	}
	return p, nil
}

func (p *pageVM) console() map[string]interface{} {
	logFn := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			log.Debug().Str("type", level).Str("message", strings.Join(parts, " ")).Msg("Page console")
			return goja.Undefined()
		}
	}
	return map[string]interface{}{
		"log":   logFn("log"),
		"info":  logFn("info"),
		"warn":  logFn("warning"),
		"error": logFn("error"),
		"debug": logFn("debug"),
	}
}

func (p *pageVM) schedule(repeat bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return goja.Undefined()
		}
		delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
		if delay < 0 {
			delay = 0
		}
		var args []goja.Value
		if len(call.Arguments) > 2 {
			args = call.Arguments[2:]
		}

		p.nextID++
		p.seq++
		t := &timer{id: p.nextID, fireAt: p.now + delay, seq: p.seq, fn: fn, args: args}
		if repeat {
			// A zero-delay interval would spin; browsers clamp it too.
			t.every = max(delay, time.Millisecond)
		}
		p.timers = append(p.timers, t)
		return p.vm.ToValue(t.id)
	}
}

func (p *pageVM) clear(call goja.FunctionCall) goja.Value {
	id := call.Argument(0).ToInteger()
	for i, t := range p.timers {
		if t.id == id {
			p.timers = append(p.timers[:i], p.timers[i+1:]...)
			break
		}
	}
	return goja.Undefined()
}

// run executes one script, reporting but not propagating its error.
func (p *pageVM) run(name, src string) bool {
	if _, err := p.vm.RunString(src); err != nil {
		log.Debug().Str("script", name).Err(err).Msg("Inline script failed (expected without a DOM)")
		return false
	}
	return true
}

// settle advances the virtual clock by d, firing due timers in order.
// It returns the number of callbacks executed.
func (p *pageVM) settle(d time.Duration) int {
	until := p.now + d
	runs := 0
	for runs < maxTimerRuns {
		sort.SliceStable(p.timers, func(i, j int) bool {
			if p.timers[i].fireAt != p.timers[j].fireAt {
				return p.timers[i].fireAt < p.timers[j].fireAt
			}
			return p.timers[i].seq < p.timers[j].seq
		})
		if len(p.timers) == 0 || p.timers[0].fireAt > until {
			break
		}

		t := p.timers[0]
		p.timers = p.timers[1:]
		p.now = t.fireAt
		if t.every > 0 {
			p.seq++
			next := *t
			next.fireAt = t.fireAt + t.every
			next.seq = p.seq
			p.timers = append(p.timers, &next)
		}

		if _, err := t.fn(goja.Undefined(), t.args...); err != nil {
			log.Debug().Err(err).Int64("timer", t.id).Msg("Timer callback failed")
		}
		runs++
	}
	if runs == maxTimerRuns {
		log.Warn().Int("runs", runs).Msg("Timer budget exhausted while settling")
	}
	p.now = until
	return runs
}

// snapshot evaluates script and returns its string result.
func (p *pageVM) snapshot(script string) (string, error) {
	v, err := p.vm.RunString(script)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}
