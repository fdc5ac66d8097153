package entity

import "fmt"

// OperationKind clasifica un movimiento del kardex según su efecto sobre el stock total.
// Los valores se almacenan tal cual (compatibilidad con el histórico).
type OperationKind string

const (
	OperationIngreso        OperationKind = "INGRESO"
	OperationSalida         OperationKind = "SALIDA"
	OperationDevolucion     OperationKind = "DEVOLUCION"
	OperationAjustePositivo OperationKind = "AJUSTE_POSITIVO"
	OperationAjusteNegativo OperationKind = "AJUSTE_NEGATIVO"
	OperationTransferencia  OperationKind = "TRANSFERENCIA"
)

// OperationKinds lista todas las operaciones válidas en orden estable.
var OperationKinds = []OperationKind{
	OperationIngreso,
	OperationSalida,
	OperationDevolucion,
	OperationAjustePositivo,
	OperationAjusteNegativo,
	OperationTransferencia,
}

// Sign devuelve +1, -1 o 0 según la tabla de signos del kardex.
func (k OperationKind) Sign() int {
	switch k {
	case OperationIngreso, OperationDevolucion, OperationAjustePositivo:
		return 1
	case OperationSalida, OperationAjusteNegativo:
		return -1
	default:
		return 0
	}
}

// Valid indica si k es una operación conocida.
func (k OperationKind) Valid() bool {
	for _, v := range OperationKinds {
		if v == k {
			return true
		}
	}
	return false
}

// ParseOperationKind convierte el tag textual en OperationKind.
func ParseOperationKind(s string) (OperationKind, error) {
	k := OperationKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("tipo de operación desconocido: %q", s)
	}
	return k, nil
}

// MovementKind es la razón de negocio del movimiento (compra, despacho, ...).
type MovementKind string

const (
	MovementCompra        MovementKind = "COMPRA"
	MovementDespacho      MovementKind = "DESPACHO"
	MovementDevolucion    MovementKind = "DEVOLUCION"
	MovementAjuste        MovementKind = "AJUSTE"
	MovementTransferencia MovementKind = "TRANSFERENCIA"
)

// Valid indica si m es una razón de negocio conocida.
func (m MovementKind) Valid() bool {
	switch m {
	case MovementCompra, MovementDespacho, MovementDevolucion, MovementAjuste, MovementTransferencia:
		return true
	}
	return false
}

// ParseMovementKind convierte el tag textual en MovementKind.
func ParseMovementKind(s string) (MovementKind, error) {
	m := MovementKind(s)
	if !m.Valid() {
		return "", fmt.Errorf("tipo de movimiento desconocido: %q", s)
	}
	return m, nil
}

// Condition es el estado de ciclo de vida de un ingreso. Los códigos numéricos son fijos.
type Condition int

const (
	ConditionCancelled        Condition = 0
	ConditionCreated          Condition = 1
	ConditionValidated        Condition = 2
	ConditionQuantityModified Condition = 3
)

func (c Condition) String() string {
	switch c {
	case ConditionCancelled:
		return "cancelado"
	case ConditionCreated:
		return "creado"
	case ConditionValidated:
		return "validado"
	case ConditionQuantityModified:
		return "cantidad_modificada"
	}
	return fmt.Sprintf("condicion(%d)", int(c))
}

// Valid indica si c es un código conocido.
func (c Condition) Valid() bool {
	return c >= ConditionCancelled && c <= ConditionQuantityModified
}

// StockApplied indica si el ingreso ya afectó el stock (validado total o parcialmente).
func (c Condition) StockApplied() bool {
	return c == ConditionValidated || c == ConditionQuantityModified
}

// AlertKind es el motivo de la alerta más severa de un registro de stock.
type AlertKind string

const (
	AlertNone      AlertKind = ""
	AlertCritico   AlertKind = "critico"
	AlertVencido   AlertKind = "vencido"
	AlertBajo      AlertKind = "bajo"
	AlertPorVencer AlertKind = "por_vencer"
)
