package cedula_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ventas-api/pkg/cedula"
)

func TestValidate_CedulasValidas(t *testing.T) {
	for _, ci := range []string{"1710034065", "0926687856"} {
		assert.NoError(t, cedula.Validate(ci), ci)
	}
}

func TestValidate_CedulasInvalidas(t *testing.T) {
	cases := map[string]string{
		"digito verificador": "1710034064",
		"longitud":           "171003406",
		"letras":             "17100340A5",
		"provincia":          "2610034065",
		"tercer digito":      "1770034065",
	}
	for name, ci := range cases {
		assert.Error(t, cedula.Validate(ci), name)
	}
}

func TestVerificationDigit(t *testing.T) {
	assert.Equal(t, byte('5'), cedula.VerificationDigit("171003406"))
	assert.Equal(t, byte('6'), cedula.VerificationDigit("092668785"))
}
