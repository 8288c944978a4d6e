package entity

import (
	"fmt"
	"strings"
)

// PaymentMethod método de pago de una venta (conjunto cerrado).
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// PaymentMethods lista los métodos aceptados, en el orden en que se muestran.
var PaymentMethods = []PaymentMethod{PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer}

// ParsePaymentMethod valida s contra el conjunto cerrado (sin distinguir mayúsculas).
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	pm := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if pm.Valid() {
		return pm, nil
	}
	return "", fmt.Errorf("método de pago desconocido: %q", s)
}

// Valid reporta si el método pertenece al conjunto.
func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

func (m PaymentMethod) String() string { return string(m) }
