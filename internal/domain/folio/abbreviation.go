// Package folio contiene las reglas puras para construir el folio de sistema de una
// correspondencia: abreviatura del área, secuencia global y folio de respuesta.
package folio

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxAbbrevLength      = 4
	minAbbrevLength      = 2
	fallbackAbbrevLength = 3
	minSubstantiveLength = 4 // palabras de 3 letras o menos no aportan inicial

	// PlaceholderAbbrev se usa cuando el nombre del área no está disponible
	// (directorio caído) o no produce ninguna letra.
	PlaceholderAbbrev = "SIN"
)

// Artículos y preposiciones que nunca aportan inicial.
var stopWords = map[string]struct{}{
	"de": {}, "del": {}, "la": {}, "las": {}, "los": {}, "el": {}, "y": {},
	"en": {}, "a": {}, "para": {}, "con": {}, "por": {}, "al": {},
}

var acronymPattern = regexp.MustCompile(`\(([^)]*)\)`)

// Normalize descompone el texto (NFD) y elimina los diacríticos: "Dirección" -> "Direccion".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Abbreviate calcula la abreviatura de un área a partir de su nombre.
//
// Si el nombre trae siglas entre paréntesis se usan tal cual ("... (DAF)" -> "DAF");
// si no, se toma la inicial de cada palabra sustantiva (sin artículos ni palabras de
// tres letras o menos). El resultado se corta a 4 caracteres. Si queda con menos de 2,
// se usan las primeras 3 letras de las palabras no vacías concatenadas.
func Abbreviate(name string) string {
	clean := Normalize(strings.TrimSpace(name))

	var acronyms []string
	for _, m := range acronymPattern.FindAllStringSubmatch(clean, -1) {
		if a := strings.Join(strings.Fields(m[1]), ""); a != "" {
			acronyms = append(acronyms, a)
		}
	}
	rest := acronymPattern.ReplaceAllString(clean, " ")

	var b strings.Builder
	if len(acronyms) > 0 {
		for _, a := range acronyms {
			b.WriteString(strings.ToUpper(a))
		}
	} else {
		for _, w := range words(rest) {
			if isStopWord(w) || utf8.RuneCountInString(w) < minSubstantiveLength {
				continue
			}
			if r, ok := firstLetter(w); ok {
				b.WriteRune(unicode.ToUpper(r))
			}
		}
	}

	abbrev := truncateRunes(b.String(), maxAbbrevLength)
	if utf8.RuneCountInString(abbrev) < minAbbrevLength {
		abbrev = fallbackAbbrev(rest)
	}
	if abbrev == "" {
		return PlaceholderAbbrev
	}
	return abbrev
}

func fallbackAbbrev(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		if isStopWord(w) {
			continue
		}
		for _, r := range w {
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
			}
		}
	}
	return truncateRunes(b.String(), fallbackAbbrevLength)
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}

func firstLetter(w string) (rune, bool) {
	for _, r := range w {
		if unicode.IsLetter(r) {
			return r, true
		}
	}
	return 0, false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
