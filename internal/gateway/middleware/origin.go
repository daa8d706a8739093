package middleware

import "strings"

// OriginPolicy is the browser origin allow list shared by CORS and the
// websocket upgrader. An empty list or "*" allows every origin.
type OriginPolicy struct {
	allowAll bool
	origins  map[string]struct{}
}

func NewOriginPolicy(allowed []string) OriginPolicy {
	p := OriginPolicy{origins: make(map[string]struct{}, len(allowed))}
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			p.allowAll = true
		}
		p.origins[o] = struct{}{}
	}
	if len(p.origins) == 0 {
		p.allowAll = true
	}
	return p
}

func (p OriginPolicy) AllowAll() bool { return p.allowAll }

// Allows reports whether a request carrying origin may proceed. Requests
// without an Origin header come from non-browser clients and are allowed.
func (p OriginPolicy) Allows(origin string) bool {
	origin = strings.TrimSpace(origin)
	if origin == "" || p.allowAll {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}
