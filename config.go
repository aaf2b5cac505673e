package ocrcache

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Config holds the OCR and table-recognition settings in effect for a
// processing run, as an arbitrary mapping of setting names to primitive
// values (strings, booleans, numbers).
//
// Only the settings that actually affect engine output participate in
// cache key derivation; anything else (display toggles, log levels) is
// ignored for key purposes so cosmetic settings never fragment the cache.
type Config map[string]any

// Settings that affect OCR/table output and therefore participate in key
// derivation.
var keySettings = map[string]struct{}{
	"lang":                     {},
	"use_textline_orientation": {},
	"text_det_thresh":          {},
	"text_rec_score_thresh":    {},
	"detect_tables":            {},
	"table_conf_threshold":     {},
}

// canonical renders the key-relevant settings as a deterministic byte
// sequence: sorted by name, one name=value pair per line. Numeric values
// are normalized so that 1 and 1.0 render identically regardless of the
// Go type they arrived in.
func (c Config) canonical() ([]byte, error) {
	names := make([]string, 0, len(c))
	for name := range c {
		if _, ok := keySettings[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var buf bytes.Buffer
	for _, name := range names {
		value, err := formatSettingValue(c[name])
		if err != nil {
			return nil, fmt.Errorf("%w: setting %q: %v", ErrInvalidConfig, name, err)
		}
		buf.WriteString(name)
		buf.WriteByte('=')
		buf.WriteString(value)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func formatSettingValue(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}
