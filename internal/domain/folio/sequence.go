package folio

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
)

const (
	// SequenceWidth dígitos de la secuencia (relleno con ceros).
	SequenceWidth = 4
	// MaxLength límite de almacenamiento de folio_sistema.
	MaxLength = 50
	// MaxReplyBaseLength longitud máxima del folio original al que se puede responder.
	MaxReplyBaseLength = 15
)

// ParseSequence extrae el segmento numérico después del último guion.
func ParseSequence(folio string) (int, bool) {
	i := strings.LastIndex(folio, "-")
	if i < 0 || i == len(folio)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(folio[i+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// MaxSequence devuelve la secuencia más alta entre los folios que no son respuesta (0 si no hay).
func MaxSequence(folios []string) int {
	highest := 0
	for _, f := range folios {
		if entity.HasReplySuffix(f) {
			continue
		}
		if n, ok := ParseSequence(f); ok && n > highest {
			highest = n
		}
	}
	return highest
}

// NextSequence siguiente secuencia global: máximo de los folios originales + 1.
func NextSequence(folios []string) int {
	return MaxSequence(folios) + 1
}

// FormatSequence rellena la secuencia con ceros a la izquierda.
func FormatSequence(n int) string {
	return fmt.Sprintf("%0*d", SequenceWidth, n)
}

// Compose arma el folio <destinatario>-<remitente>-<secuencia> y valida su longitud.
func Compose(recipientAbbrev, senderAbbrev string, sequence int) (string, error) {
	f := recipientAbbrev + "-" + senderAbbrev + "-" + FormatSequence(sequence)
	if utf8.RuneCountInString(f) > MaxLength {
		return "", fmt.Errorf("%w: el folio %q excede %d caracteres", domain.ErrInvalidInput, f, MaxLength)
	}
	return f, nil
}

// ReplyFolio folio de la respuesta formal a original. Una respuesta no puede responderse.
func ReplyFolio(original string) (string, error) {
	if entity.HasReplySuffix(original) {
		return "", fmt.Errorf("%w: el folio %s ya es una respuesta", domain.ErrConflict, original)
	}
	if utf8.RuneCountInString(original) > MaxReplyBaseLength {
		return "", fmt.Errorf("%w: el folio %s excede %d caracteres para generar respuesta", domain.ErrInvalidInput, original, MaxReplyBaseLength)
	}
	return original + entity.ReplySuffix, nil
}
