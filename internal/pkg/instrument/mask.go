package instrument

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
)

// Masked replaces the value of every redacted field.
const Masked = "***"

// DefaultMaskFields are redacted whether or not the config lists them, so the
// login code and the minted session never reach a log sink.
var DefaultMaskFields = []string{"code", "password", "authorization", "session_token"}

// MaskKeys lowercases fields and merges them with DefaultMaskFields.
func MaskKeys(fields []string) map[string]struct{} {
	keys := make(map[string]struct{}, len(DefaultMaskFields)+len(fields))
	for _, field := range slices.Concat(DefaultMaskFields, fields) {
		if field = strings.ToLower(strings.TrimSpace(field)); field != "" {
			keys[field] = struct{}{}
		}
	}
	return keys
}

// IsMasked reports whether key names a redacted field.
func IsMasked(keys map[string]struct{}, key string) bool {
	_, ok := keys[strings.ToLower(key)]
	return ok
}

// Mask returns v with redacted map values replaced, walking nested maps and slices.
func Mask(v any, keys map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if IsMasked(keys, k) {
				out[k] = Masked
				continue
			}
			out[k] = Mask(inner, keys)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if IsMasked(keys, k) {
				out[k] = Masked
				continue
			}
			out[k] = inner
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = Mask(inner, keys)
		}
		return out
	default:
		return v
	}
}

// maskJSON masks payload when it holds a JSON object or array.
func maskJSON(payload []byte, keys map[string]struct{}) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(Mask(body, keys))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func maskAttr(attr slog.Attr, keys map[string]struct{}) slog.Attr {
	if IsMasked(keys, attr.Key) {
		return slog.String(attr.Key, Masked)
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		group := attr.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, inner := range group {
			out[i] = maskAttr(inner, keys)
		}
		attr.Value = slog.GroupValue(out...)

	case slog.KindString:
		if s, ok := maskJSON([]byte(attr.Value.String()), keys); ok {
			attr.Value = slog.StringValue(s)
		}

	case slog.KindAny:
		switch val := attr.Value.Any().(type) {
		case nil:
		case []byte:
			if s, ok := maskJSON(val, keys); ok {
				attr.Value = slog.StringValue(s)
			}
		case map[string]any, map[string]string, []any:
			attr.Value = slog.AnyValue(Mask(val, keys))
		}
	}

	return attr
}
