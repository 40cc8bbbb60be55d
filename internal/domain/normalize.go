package domain

import (
	"strings"

	"github.com/spf13/cast"
)

// NormalizeImages flattens the image shapes clients send (a single URL, a
// list of URLs, a list of {url} objects, or a mix) into trimmed, non-empty
// URLs in input order. Anything else is dropped.
func NormalizeImages(raw any) []string {
	out := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch v := raw.(type) {
	case string:
		add(v)
	case []string:
		for _, s := range v {
			add(s)
		}
	case []any:
		for _, item := range v {
			switch it := item.(type) {
			case string:
				add(it)
			case map[string]any, map[any]any:
				m, err := cast.ToStringMapE(it)
				if err != nil {
					continue
				}
				if u, err := cast.ToStringE(m["url"]); err == nil {
					add(u)
				}
			}
		}
	}
	return out
}

// NormalizeArchive accepts the archive marker as a bool, 0/1, a boolean
// string, or null (not archived).
func NormalizeArchive(raw any) (bool, error) {
	if raw == nil {
		return false, nil
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return false, BadRequestf("invalid archive value %v", raw)
	}
	return b, nil
}
