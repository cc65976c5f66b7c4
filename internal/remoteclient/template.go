package remoteclient

import (
	"regexp"
	"strings"

	"github.com/routerd/routerd/internal/value"
)

// bodyTemplateToken matches the ":Name" (uppercase-leading) substitution
// tokens inside a JSON body template, distinct from the lowercase-leading
// ":name" path-segment substitution below.
var bodyTemplateToken = regexp.MustCompile(`^:[A-Z]\w*$`)

// SubstitutePath rewrites any "/:name/" segment of path with the stringified
// value captured under that name, or the empty string if no such param was
// captured.
func SubstitutePath(path string, params map[string]value.Value) string {
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		key := seg[1:]
		if v, ok := params[key]; ok {
			segs[i] = v.String()
		} else {
			segs[i] = ""
		}
	}
	return strings.Join(segs, "/")
}

// SubstituteBody scans a JSON body template for ":Name" tokens and replaces
// each with the stringified value captured under "Name", leaving any token
// with no matching param untouched.
func SubstituteBody(template string, params map[string]value.Value) string {
	body := template
	for key, v := range params {
		token := ":" + key
		if !bodyTemplateToken.MatchString(token) {
			continue
		}
		body = strings.ReplaceAll(body, token, v.String())
	}
	return body
}
