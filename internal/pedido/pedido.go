// Package pedido is the production-order domain the history engine serves:
// the entity types, a local snapshot repository, the recorder facade that
// builds well-formed action payloads, and the handler that reverses or
// reapplies recorded actions against the repository.
package pedido

// Pedido is a production order. JSON tags match the tracker's wire shape
// so payload snapshots stay interchangeable with it.
type Pedido struct {
	ID               string  `json:"id"`
	SecuenciaPedido  int64   `json:"secuenciaPedido"`
	NumeroPedido     string  `json:"numeroPedido"`
	Cliente          string  `json:"cliente"`
	MaquinaImpresion string  `json:"maquinaImpresion"`
	Metros           float64 `json:"metros"`
	Fecha            string  `json:"fecha"`        // YYYY-MM-DD
	FechaEntrega     string  `json:"fechaEntrega"` // YYYY-MM-DD
	EtapaActual      string  `json:"etapaActual"`
	Prioridad        string  `json:"prioridad"`
	TipoImpresion    string  `json:"tipoImpresion"`
	TiempoProduccion string  `json:"tiempoProduccionPlanificado"` // HH:mm
	Observaciones    string  `json:"observaciones"`
}

// Cliente is a customer. Only the fields the history subsystem touches.
type Cliente struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

// Vendedor is a salesperson.
type Vendedor struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}
