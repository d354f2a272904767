package config

import (
	"strings"
	"time"

	"github.com/dshills/codeshell/internal/config/loader"
)

// decoder copies typed values out of a merged settings map, collecting a
// TypeError for every value of the wrong type.
type decoder struct {
	data map[string]any
	errs []error
}

func (d *decoder) lookup(path []string) (any, bool) {
	return loader.Lookup(d.data, path...)
}

func (d *decoder) fail(path []string, want string, got any) {
	d.errs = append(d.errs, &TypeError{Path: strings.Join(path, "."), Want: want, Got: got})
}

func (d *decoder) boolean(dst *bool, path ...string) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(path, "bool", v)
		return
	}
	*dst = b
}

func (d *decoder) str(dst *string, path ...string) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		d.fail(path, "string", v)
		return
	}
	*dst = s
}

func (d *decoder) integer(dst *int, path ...string) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case uint64:
		*dst = int(n)
	case float64:
		if n != float64(int(n)) {
			d.fail(path, "integer", v)
			return
		}
		*dst = int(n)
	default:
		d.fail(path, "integer", v)
	}
}

func (d *decoder) float(dst *float64, path ...string) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	switch n := v.(type) {
	case float64:
		*dst = n
	case int:
		*dst = float64(n)
	case int64:
		*dst = float64(n)
	default:
		d.fail(path, "number", v)
	}
}

func (d *decoder) duration(dst *time.Duration, path ...string) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	switch t := v.(type) {
	case time.Duration:
		*dst = t
	case string:
		parsed, err := time.ParseDuration(t)
		if err != nil {
			d.fail(path, "duration", v)
			return
		}
		*dst = parsed
	case int64:
		*dst = time.Duration(t) * time.Millisecond
	case int:
		*dst = time.Duration(t) * time.Millisecond
	default:
		d.fail(path, "duration", v)
	}
}

func (d *decoder) stringList(dst *[]string, path ...string) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	switch t := v.(type) {
	case []string:
		*dst = append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				d.fail(path, "list of strings", v)
				return
			}
			out = append(out, s)
		}
		*dst = out
	case string:
		*dst = []string{t}
	default:
		d.fail(path, "list of strings", v)
	}
}
