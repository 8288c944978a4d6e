package sales

import (
	"time"

	"github.com/jhoicas/ventas-api/internal/domain/entity"
)

// reservationLog bitácora de descuentos aplicados en un intento de venta.
// Ante un fallo se recorre en orden inverso para compensar.
type reservationLog struct {
	attemptID string
	applied   []entity.StockMovement
}

func newReservationLog(attemptID string) *reservationLog {
	return &reservationLog{attemptID: attemptID}
}

func (l *reservationLog) record(productID int64, quantity, previous, next int, at time.Time) {
	l.applied = append(l.applied, entity.StockMovement{
		AttemptID:     l.attemptID,
		ProductID:     productID,
		Type:          entity.MovementTypeOut,
		Quantity:      quantity,
		PreviousStock: previous,
		NewStock:      next,
		CreatedAt:     at,
	})
}

// reversed devuelve los movimientos del último al primero.
func (l *reservationLog) reversed() []entity.StockMovement {
	out := make([]entity.StockMovement, len(l.applied))
	for i, m := range l.applied {
		out[len(l.applied)-1-i] = m
	}
	return out
}

func (l *reservationLog) empty() bool { return len(l.applied) == 0 }
