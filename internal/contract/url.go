package contract

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURL replaces each ":name" segment of path with params[name]. Params
// that do not appear in the path are ignored.
func BuildURL(path string, params map[string]any) string {
	if len(params) == 0 {
		return path
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if !strings.HasPrefix(s, ":") {
			continue
		}
		if v, ok := params[s[1:]]; ok {
			segs[i] = url.PathEscape(fmt.Sprint(v))
		}
	}
	return strings.Join(segs, "/")
}

// URL builds the request target for the operation, query string included.
func (o Operation) URL(params map[string]any, query url.Values) string {
	u := BuildURL(o.Path, params)
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// PathParams lists the ":name" parameters of the path template in order.
func (o Operation) PathParams() []string {
	var out []string
	for _, s := range strings.Split(o.Path, "/") {
		if strings.HasPrefix(s, ":") {
			out = append(out, s[1:])
		}
	}
	return out
}
