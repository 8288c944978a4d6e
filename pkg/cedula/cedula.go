// Package cedula valida la cédula de identidad ecuatoriana (10 dígitos, módulo 10).
package cedula

import (
	"fmt"
	"unicode"
)

// coeficientes del módulo 10 aplicados a los 9 primeros dígitos, de izquierda a derecha.
var ciWeights = [9]int{2, 1, 2, 1, 2, 1, 2, 1, 2}

// Validate valida que ci tenga 10 dígitos, provincia 01..24 (o 30, extranjeros),
// tercer dígito menor a 6 y dígito verificador correcto.
func Validate(ci string) error {
	if len(ci) != 10 {
		return fmt.Errorf("cédula: debe tener 10 dígitos, se recibieron %d caracteres", len(ci))
	}
	for _, r := range ci {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("cédula: debe contener solo números")
		}
	}
	province := int(ci[0]-'0')*10 + int(ci[1]-'0')
	if (province < 1 || province > 24) && province != 30 {
		return fmt.Errorf("cédula: código de provincia inválido %02d", province)
	}
	if ci[2]-'0' >= 6 {
		return fmt.Errorf("cédula: tercer dígito inválido %c", ci[2])
	}
	expected := VerificationDigit(ci[:9])
	if ci[9] != expected {
		return fmt.Errorf("cédula: dígito verificador inválido: esperado %c, recibido %c", expected, ci[9])
	}
	return nil
}

// VerificationDigit calcula el dígito verificador de los 9 primeros dígitos.
func VerificationDigit(base string) byte {
	var sum int
	for i := 0; i < 9 && i < len(base); i++ {
		p := int(base[i]-'0') * ciWeights[i]
		if p > 9 {
			p -= 9
		}
		sum += p
	}
	return byte('0' + (10-sum%10)%10)
}
