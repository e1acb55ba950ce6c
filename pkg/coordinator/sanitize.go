package coordinator

import "html"

// sanitize strips markup from every string leaf. bluemonday escapes the text
// it keeps, so the result is unescaped back to plain text.
func (c *Coordinator) sanitize(values map[string]any) map[string]any {
	if c.sanitizer == nil {
		return values
	}
	out, _ := c.sanitizeValue(values).(map[string]any)
	return out
}

func (c *Coordinator) sanitizeValue(value any) any {
	switch typed := value.(type) {
	case string:
		return html.UnescapeString(c.sanitizer.Sanitize(typed))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = c.sanitizeValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = c.sanitizeValue(v)
		}
		return out
	default:
		return typed
	}
}
