package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	labelPrefix = regexp.MustCompile(`(?i)^\s*(?:answer|response|persona)\s*:`)

	disclosurePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)as an (?:ai|artificial intelligence|language model).{0,50}?[.,]`),
		regexp.MustCompile(`(?i)i am an? (?:ai|artificial intelligence|llm).{0,50}?[.,]`),
		regexp.MustCompile(`(?i)i cannot (?:feel|think|have opinions).{0,50}?[.,]`),
		regexp.MustCompile(`(?i)i don't have personal (?:feelings|beliefs).{0,50}?[.,]`),
	}

	repeatedBlanks = regexp.MustCompile(`[ \t]{2,}`)
)

// ResponseSanitizer limpia la respuesta visible del persona: etiquetas tipo "Answer:" y
// frases de auto-revelación como IA. No se aplica a la reflexión.
type ResponseSanitizer struct{}

// DefaultResponseSanitizer permite uso directo sin instanciar.
var DefaultResponseSanitizer = ResponseSanitizer{}

// Sanitize es idempotente: se repite hasta que el texto deja de cambiar.
func (ResponseSanitizer) Sanitize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	// Cada pasada que cambia algo quita runas o solo pasa a mayúscula la primera, así que el ciclo termina.
	cur := text
	for {
		next := sanitizeOnce(cur)
		if next == cur {
			return cur
		}
		cur = next
	}
}

func sanitizeOnce(text string) string {
	s := labelPrefix.ReplaceAllString(text, "")
	s = strings.TrimSpace(s)

	for _, re := range disclosurePatterns {
		s = re.ReplaceAllString(s, "")
	}
	s = repeatedBlanks.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	return upperFirst(s)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
