package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// sanitizeText strips disallowed markup but stores plain text, so characters such as
// '&', '<' and quotes survive unescaped in API responses and exports.
func sanitizeText(policy *bluemonday.Policy, value string) string {
	cleaned := policy.Sanitize(html.UnescapeString(strings.TrimSpace(value)))
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
