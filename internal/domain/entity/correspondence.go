package entity

import "time"

// Correspondence representa un documento recibido en oficialía de partes (dt_correspondencia).
type Correspondence struct {
	ID                   int64
	FolioSistema         string // generado, único
	FolioCorrespondencia string // referencia externa capturada por quien registra
	PriorityID           int64
	DeliveryMethodID     int64
	Summary              string
	CorrespondenceDate   time.Time
	FileName             string // <folio_sistema>.pdf
	SenderPositionID     int64
	ParentID             *int64 // solo en respuestas: id de la correspondencia original
	CreatedBy            int64
	EditedBy             *int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsReply indica si la correspondencia es la respuesta formal de otra.
// Se reconoce por la referencia al padre o, en registros históricos sin ella, por el sufijo del folio.
func (c *Correspondence) IsReply() bool {
	if c.ParentID != nil {
		return true
	}
	return HasReplySuffix(c.FolioSistema)
}

// CorrespondenceWithLatestEntry es el resultado tipado de consultar una correspondencia
// junto con su estado vigente.
type CorrespondenceWithLatestEntry struct {
	Correspondence
	Latest *StateEntry
}

// CorrespondenceWithFullHistory es una correspondencia con todo su historial de estados,
// ordenado del más antiguo al más reciente.
type CorrespondenceWithFullHistory struct {
	Correspondence
	History []StateEntry
}

// Latest devuelve la entrada vigente (la última del historial) o nil si no hay entradas.
func (c *CorrespondenceWithFullHistory) Latest() *StateEntry {
	if len(c.History) == 0 {
		return nil
	}
	return &c.History[len(c.History)-1]
}
