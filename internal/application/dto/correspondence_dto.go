package dto

import "time"

// CreateCorrespondenceRequest campos del formulario multipart de registro (el PDF va en "documento").
type CreateCorrespondenceRequest struct {
	FolioCorrespondencia string `json:"folio_correspondencia" form:"folio_correspondencia"`
	PriorityID           int64  `json:"ct_clasificacion_prioridad_id" form:"ct_clasificacion_prioridad_id"`
	DeliveryMethodID     int64  `json:"ct_forma_entrega_id" form:"ct_forma_entrega_id"`
	Summary              string `json:"resumen" form:"resumen"`
	CorrespondenceDate   string `json:"fecha_correspondencia" form:"fecha_correspondencia"` // YYYY-MM-DD
	SenderPositionID     int64  `json:"id_usuario_puesto" form:"id_usuario_puesto"`
	RecipientPositionID  int64  `json:"id_usuario_puesto_2" form:"id_usuario_puesto_2"`
}

// ChangeStatusRequest cambio de estado. El adjunto (PDF) es opcional y va en el campo "attachment".
type ChangeStatusRequest struct {
	CorrespondenceID int64  `json:"dt_correspondencia_id" form:"dt_correspondencia_id"`
	Status           int    `json:"ct_correspondencia_estado" form:"ct_correspondencia_estado"`
	Observations     string `json:"observaciones" form:"observaciones"`
	TargetPositionID int64  `json:"id_usuario_puesto_2" form:"id_usuario_puesto_2"` // 0 = sin destino
}

// EditCorrespondenceRequest edición de una correspondencia en estado recibida.
// Los campos vacíos o en cero conservan el valor actual; el PDF puede reemplazarse en "documento".
type EditCorrespondenceRequest struct {
	CorrespondenceID     int64  `json:"dt_correspondencia_id" form:"dt_correspondencia_id"`
	FolioCorrespondencia string `json:"folio_correspondencia" form:"folio_correspondencia"`
	PriorityID           int64  `json:"ct_clasificacion_prioridad_id" form:"ct_clasificacion_prioridad_id"`
	DeliveryMethodID     int64  `json:"ct_forma_entrega_id" form:"ct_forma_entrega_id"`
	Summary              string `json:"resumen" form:"resumen"`
	CorrespondenceDate   string `json:"fecha_correspondencia" form:"fecha_correspondencia"`
}

// ListCorrespondenceQuery filtros del listado. Status vacío = bandeja (estado 1); "todos" = todo lo visible.
type ListCorrespondenceQuery struct {
	DateFrom         string
	DateTo           string
	PriorityID       int64
	DeliveryMethodID int64
	CreatedBy        int64
	Status           string
	Page             PageRequest
}

// StateEntryResponse una entrada del historial.
type StateEntryResponse struct {
	ID               int64     `json:"id"`
	HolderPositionID int64     `json:"id_usuario_puesto"`
	Status           int       `json:"ct_correspondencia_estado"`
	StatusName       string    `json:"estado"`
	Observations     string    `json:"observaciones"`
	ActorUserID      int64     `json:"ct_usuario_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// CorrespondenceResponse salida de una correspondencia.
type CorrespondenceResponse struct {
	ID                   int64                `json:"id_correspondencia"`
	FolioSistema         string               `json:"folio_sistema"`
	FolioCorrespondencia string               `json:"folio_correspondencia"`
	PriorityID           int64                `json:"ct_clasificacion_prioridad_id"`
	DeliveryMethodID     int64                `json:"ct_forma_entrega_id"`
	Summary              string               `json:"resumen"`
	CorrespondenceDate   string               `json:"fecha_correspondencia"`
	FileName             string               `json:"archivo"`
	SenderPositionID     int64                `json:"id_usuario_puesto"`
	ParentID             *int64               `json:"correspondencia_padre_id,omitempty"`
	CreatedBy            int64                `json:"ct_usuario_id"`
	EditedBy             *int64               `json:"ct_usuario_editor_id,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
	Current              *StateEntryResponse  `json:"estado_actual,omitempty"`
	History              []StateEntryResponse `json:"historial,omitempty"`
}

// CorrespondenceListResponse lista paginada de correspondencia.
type CorrespondenceListResponse struct {
	Items []CorrespondenceResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}

// TransitionResponse resultado de un cambio de estado. Reply* solo si se creó una respuesta formal.
type TransitionResponse struct {
	CorrespondenceID int64  `json:"dt_correspondencia_id"`
	Status           int    `json:"ct_correspondencia_estado"`
	ReplyID          *int64 `json:"respuesta_id,omitempty"`
	ReplyFolio       string `json:"respuesta_folio,omitempty"`
}

// AreaResponse área del directorio.
type AreaResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}
