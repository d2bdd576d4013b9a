package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// RenderTemplate expands {{ }} markers in prompt text against vars. Prompts
// are plain text, so no HTML escaping is applied.
func RenderTemplate(text string, vars map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("prompt").Option("missingkey=zero").Funcs(template.FuncMap{
		"default": func(defaultVal any, val any) any {
			if val == nil || val == "" {
				return defaultVal
			}
			return val
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": func(s string) string {
			if len(s) == 0 {
				return s
			}
			return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
		},
		"join": func(sep string, items any) string {
			switch v := items.(type) {
			case []string:
				return strings.Join(v, sep)
			case []any:
				parts := make([]string, len(v))
				for i, item := range v {
					parts[i] = fmt.Sprintf("%v", item)
				}
				return strings.Join(parts, sep)
			default:
				return fmt.Sprintf("%v", items)
			}
		},
	}).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", err
	}

	return buf.String(), nil
}
