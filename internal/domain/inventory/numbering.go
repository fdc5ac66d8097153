package inventory

import (
	"fmt"
	"time"
)

// Módulos del generador de secuencias.
const (
	SequenceKardex  = "kardex"
	SequenceIngreso = "ingreso"
)

// MovementNumber formatea el número de movimiento del kardex: KDX-{YYYYMMDD}-{seq:06d}.
func MovementNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("KDX-%s-%06d", at.Format("20060102"), seq)
}

// ReceiptNumber formatea el número de ingreso: ING-{YYYYMM}-{seq:04d}.
func ReceiptNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("ING-%s-%04d", at.Format("200601"), seq)
}
