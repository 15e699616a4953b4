package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nivel-raro"))
}

func TestNop_NoEscribe(t *testing.T) {
	l := Nop().Named("prueba")
	assert.NotPanics(t, func() { l.Info().Str("k", "v").Msg("nada") })
	assert.Equal(t, zerolog.Disabled, l.Zerolog().GetLevel())
}
