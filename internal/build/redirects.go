package build

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/strataframe/strata/pkg/render"
)

// redirectHTML builds the static stand-in document for a redirect
// response. Temporary redirects refresh after two seconds so crawlers that
// read the delay treat them as such; permanent ones refresh immediately.
// The canonical link and anchor keep the target reachable for clients that
// ignore meta refresh.
func redirectHTML(from, to string, status int) []byte {
	delay := 0
	if status == http.StatusFound || status == http.StatusTemporaryRedirect {
		delay = 2
	}

	target := render.EscapeAttr(to)
	var b strings.Builder
	b.WriteString("<!doctype html>\n")
	fmt.Fprintf(&b, "<title>Redirecting to: %s</title>\n", render.EscapeHTML(to))
	fmt.Fprintf(&b, "<meta http-equiv=\"refresh\" content=\"%d;url=%s\">\n", delay, target)
	b.WriteString("<meta name=\"robots\" content=\"noindex\">\n")
	fmt.Fprintf(&b, "<link rel=\"canonical\" href=\"%s\">\n", target)
	b.WriteString("<body>\n")
	fmt.Fprintf(&b, "\t<a href=\"%s\">Redirecting from <code>%s</code> to <code>%s</code></a>\n",
		target, render.EscapeHTML(from), render.EscapeHTML(to))
	b.WriteString("</body>\n")
	return []byte(b.String())
}
