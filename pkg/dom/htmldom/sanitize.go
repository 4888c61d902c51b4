package htmldom

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// Sanitize strips scripts, event handlers and styling from markup while
// keeping form structure and the attributes locators rely on. It is meant for
// diagnostics such as printing a form root after a failed lookup.
func Sanitize(markup string) string {
	trimmed := strings.TrimSpace(markup)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(trimmed))
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements(
			"form", "fieldset", "legend", "label", "input", "select", "option",
			"optgroup", "textarea", "button", "section", "article",
		)
		policy.AllowAttrs("id", "class", "name").Globally()
		policy.AllowDataAttributes()
		policy.AllowAttrs("action", "method", "enctype").OnElements("form")
		policy.AllowAttrs("for").OnElements("label")
		policy.AllowAttrs(
			"type", "value", "checked", "placeholder", "disabled", "readonly",
			"formaction", "formmethod",
		).OnElements("input", "button")
		policy.AllowAttrs("multiple", "disabled").OnElements("select")
		policy.AllowAttrs("value", "selected", "disabled").OnElements("option")
		policy.AllowAttrs("placeholder", "disabled", "readonly", "rows", "cols").OnElements("textarea")

		markupPolicy = policy
	})
	return markupPolicy
}
