package entity

import (
	"strings"
	"time"
)

// Status código de estado de la correspondencia (ct_correspondencia_estado).
type Status int

const (
	StatusReceived   Status = 1 // recibida (bandeja de entrada)
	StatusAdmin      Status = 2 // trámite administrativo
	StatusResponded  Status = 3 // respondida
	StatusDerived    Status = 4 // turnada a otro puesto
	StatusConcludedA Status = 5
	StatusConcludedB Status = 6
)

// ReplySuffix sufijo literal que distingue el folio de una respuesta.
const ReplySuffix = "-1"

// Valid indica si el código corresponde a un estado conocido.
func (s Status) Valid() bool {
	return s >= StatusReceived && s <= StatusConcludedB
}

// String nombre legible del estado (se usa en el acuse y en logs).
func (s Status) String() string {
	switch s {
	case StatusReceived:
		return "recibida"
	case StatusAdmin:
		return "en trámite"
	case StatusResponded:
		return "respondida"
	case StatusDerived:
		return "turnada"
	case StatusConcludedA, StatusConcludedB:
		return "concluida"
	default:
		return "desconocido"
	}
}

// StateEntry una fila del historial de estados (rl_correspondencia_usuario_estado).
// La entrada más reciente define el estado vigente y el puesto que tiene el documento.
type StateEntry struct {
	ID               int64
	CorrespondenceID int64
	HolderPositionID int64
	Status           Status
	Observations     string
	ActorUserID      int64
	CreatedAt        time.Time
}

// HasReplySuffix indica si un folio termina en el sufijo de respuesta.
func HasReplySuffix(folio string) bool {
	return strings.HasSuffix(folio, ReplySuffix)
}
