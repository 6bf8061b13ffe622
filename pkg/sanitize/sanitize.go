// Package sanitize strips markup from free-text form input before it enters
// the form store. Applicants type plain text; anything that looks like HTML is
// removed rather than escaped so the intake endpoint never receives tags.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// element matches one complete start, end or self-closing tag. A "<" that does
// not open such a tag is ordinary text ("Flat 3<B", "a<b").
var element = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9-]*(?:\s+[A-Za-z_:][-A-Za-z0-9_:.]*(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'=<>` + "`" + `]+))?)*\s*/?>`)

// Text removes every complete HTML element from raw. Input without one is
// returned exactly as typed. Otherwise the text between elements is escaped
// before the policy runs and decoded afterwards, so stray "<", ">" and "&"
// survive.
func Text(raw string) string {
	if raw == "" || !strings.ContainsAny(raw, "<>") {
		return raw
	}
	spans := element.FindAllStringIndex(raw, -1)
	if len(spans) == 0 {
		return raw
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		b.WriteString(html.EscapeString(raw[last:span[0]]))
		b.WriteString(raw[span[0]:span[1]])
		last = span[1]
	}
	b.WriteString(html.EscapeString(raw[last:]))
	return html.UnescapeString(textSanitizer().Sanitize(b.String()))
}

// Func returns Text as a plain function value for option wiring.
func Func() func(string) string {
	return Text
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
