package htmldom

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

func (d *Document) submitForm(ctx context.Context, form, submitter *html.Node) error {
	sub := Submission{
		Method:    strings.ToUpper(strings.TrimSpace(attr(form, "method"))),
		Action:    attr(form, "action"),
		Enctype:   attr(form, "enctype"),
		Values:    formValues(form, submitter),
		Form:      d.wrap(form),
		Submitter: d.wrap(submitter),
	}
	if override, ok := attrOK(submitter, "formaction"); ok {
		sub.Action = override
	}
	if override, ok := attrOK(submitter, "formmethod"); ok {
		sub.Method = strings.ToUpper(strings.TrimSpace(override))
	}
	if sub.Method != "POST" {
		sub.Method = "GET"
	}
	return d.navigate(ctx, sub)
}

func (d *Document) navigate(ctx context.Context, sub Submission) error {
	if d.submit == nil {
		return ErrNoSubmitHandler
	}
	return d.submit(ctx, sub)
}

// FormValues returns the data set the form would submit when the given
// element (which may be nil) is the submitter.
func FormValues(form *Element, submitter *Element) url.Values {
	if form == nil {
		return url.Values{}
	}
	var sub *html.Node
	if submitter != nil {
		sub = submitter.node
	}
	return formValues(form.node, sub)
}

// formValues builds the form data set in tree order: named, enabled controls;
// checkboxes and radios only when checked; buttons only when they are the
// submitter.
func formValues(form, submitter *html.Node) url.Values {
	values := url.Values{}
	walk(form, func(node *html.Node) bool {
		if node.Type != html.ElementNode || node == form {
			return true
		}
		name := attr(node, "name")
		if name == "" || hasAttr(node, "disabled") {
			return true
		}
		switch node.Data {
		case "input":
			switch inputType(node) {
			case "checkbox", "radio":
				if hasAttr(node, "checked") {
					value, ok := attrOK(node, "value")
					if !ok {
						value = "on"
					}
					values.Add(name, value)
				}
			case "submit", "image", "button", "reset":
				if node == submitter {
					values.Add(name, attr(node, "value"))
				}
			case "file":
			default:
				values.Add(name, attr(node, "value"))
			}
		case "textarea":
			values.Add(name, innerText(node))
		case "select":
			for _, option := range selectedOptions(node) {
				values.Add(name, optionValue(option))
			}
		case "button":
			if node == submitter {
				values.Add(name, attr(node, "value"))
			}
		}
		return true
	})
	return values
}
