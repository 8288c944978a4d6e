package sales

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/application/dto"
	"github.com/jhoicas/ventas-api/internal/domain"
	"github.com/jhoicas/ventas-api/internal/domain/entity"
	"github.com/jhoicas/ventas-api/pkg/cedula"
)

const (
	maxItemQuantity    = 1000
	maxCustomerIDLen   = 20 // columna customer_id en los almacenes SQL
	maxIvaPercentScale = 2  // NUMERIC(5,2)
)

var (
	maxIvaPercent     = decimal.NewFromInt(100)
	defaultIvaPercent = decimal.NewFromInt(15)
)

// requestedLine producto y cantidad total pedida (ya combinada).
type requestedLine struct {
	ProductID int64
	Quantity  int
}

// saleCommand solicitud validada.
type saleCommand struct {
	CustomerID    string
	Lines         []requestedLine
	IvaPercent    decimal.Decimal
	PaymentMethod entity.PaymentMethod
	merged        int // líneas repetidas que se combinaron
}

// parseRequest valida la solicitud y combina los productos repetidos sumando cantidades,
// conservando el orden de la primera aparición.
func parseRequest(in dto.CreateSaleRequest, validateCI bool) (*saleCommand, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, &domain.ValidationError{Field: "customerId", Reason: "es obligatorio"}
	}
	if len(customerID) > maxCustomerIDLen {
		return nil, &domain.ValidationError{Field: "customerId", Reason: "admite como máximo 20 caracteres"}
	}
	if validateCI {
		if err := cedula.Validate(customerID); err != nil {
			return nil, &domain.ValidationError{Field: "customerId", Reason: err.Error()}
		}
	}
	if len(in.Items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Reason: "debe agregar al menos un producto"}
	}
	iva := defaultIvaPercent
	if in.IvaPercent != nil {
		iva = *in.IvaPercent
	}
	if iva.IsNegative() || iva.GreaterThan(maxIvaPercent) {
		return nil, &domain.ValidationError{Field: "ivaPercent", Reason: "debe estar entre 0 y 100"}
	}
	if !iva.Equal(iva.Truncate(maxIvaPercentScale)) {
		return nil, &domain.ValidationError{Field: "ivaPercent", Reason: "admite como máximo 2 decimales"}
	}
	pm, err := entity.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, &domain.ValidationError{Field: "paymentMethod", Reason: err.Error()}
	}

	cmd := &saleCommand{
		CustomerID:    customerID,
		IvaPercent:    iva,
		PaymentMethod: pm,
		Lines:         make([]requestedLine, 0, len(in.Items)),
	}
	index := make(map[int64]int, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID <= 0 {
			return nil, &domain.ValidationError{Field: "items.productId", Reason: "es obligatorio"}
		}
		if item.Quantity < 1 || item.Quantity > maxItemQuantity {
			return nil, &domain.ValidationError{Field: "items.quantity", Reason: "debe estar entre 1 y 1000"}
		}
		if i, ok := index[item.ProductID]; ok {
			cmd.Lines[i].Quantity += item.Quantity
			cmd.merged++
			continue
		}
		index[item.ProductID] = len(cmd.Lines)
		cmd.Lines = append(cmd.Lines, requestedLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return cmd, nil
}

func (c *saleCommand) productIDs() []int64 {
	ids := make([]int64, len(c.Lines))
	for i, l := range c.Lines {
		ids[i] = l.ProductID
	}
	return ids
}
