package command

import (
	"net/url"
	"regexp"
	"strings"
)

// Encoding selects how substituted values are escaped for their destination
// context.
type Encoding int

const (
	// EncodeQuery percent-encodes values destined for a URL query string or
	// form-style body.
	EncodeQuery Encoding = iota
	// EncodeXML entity-escapes values destined for an XML request body.
	EncodeXML
	// EncodeRaw performs no escaping; values containing line terminators are
	// rejected because an embedded CR or LF would smuggle extra commands into
	// a single line-framed send.
	EncodeRaw
)

// Placeholders are a name in braces, e.g. {level}. Names follow identifier
// rules, so stray braces in a template are left untouched.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Render substitutes validated values into the template in a single pass.
// Every placeholder must have a validated value; a placeholder with no
// matching declaration means the template and its parameter rows have
// drifted, which is reported rather than silently leaving the placeholder in
// the payload. Values are never re-expanded: text introduced by substitution
// is not scanned for further placeholders.
func Render(template string, values map[string]string, enc Encoding) (string, error) {
	var rendErr *Error

	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if rendErr != nil {
			return match
		}
		name := match[1 : len(match)-1]
		value, ok := values[name]
		if !ok {
			rendErr = newParamError(KindTemplateMismatch, name, "placeholder has no declared parameter")
			return match
		}

		switch enc {
		case EncodeQuery:
			return url.QueryEscape(value)
		case EncodeXML:
			return xmlEscaper.Replace(value)
		default:
			if strings.ContainsAny(value, "\r\n") {
				rendErr = newParamError(KindInvalidValue, name, "value contains a line terminator")
				return match
			}
			return value
		}
	})

	if rendErr != nil {
		return "", rendErr
	}
	return rendered, nil
}
