// Package correspondence reglas puras del ciclo de vida de la correspondencia:
// qué pasos implica un cambio de estado y quién puede ver cada documento.
package correspondence

import (
	"fmt"

	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
	"github.com/jhoicas/oficialia-api/internal/domain/folio"
)

// Step un paso de escritura de una transición. Los tipos concretos son Mutate, Append y CreateReply.
type Step interface {
	isStep()
}

// Mutate actualiza en sitio la entrada de estado vigente.
type Mutate struct {
	EntryID          int64
	Status           entity.Status
	Observations     string
	HolderPositionID *int64 // nil conserva el puesto actual
}

// Append agrega una entrada nueva al historial.
// Si ForReply es true la entrada pertenece a la respuesta creada en el mismo plan.
type Append struct {
	ForReply bool
	Entry    entity.StateEntry
}

// CreateReply clona la correspondencia original con el folio de respuesta.
type CreateReply struct {
	Folio string
}

func (Mutate) isStep()      {}
func (Append) isStep()      {}
func (CreateReply) isStep() {}

// TransitionRequest datos de un cambio de estado.
type TransitionRequest struct {
	ActorUserID      int64
	Status           entity.Status
	Observations     string
	TargetPositionID *int64
	HasAttachment    bool
}

// TransitionState lo que el planificador necesita saber de la correspondencia.
type TransitionState struct {
	Current     entity.CorrespondenceWithLatestEntry
	ReplyExists bool
}

// Plan pasos a ejecutar, en orden, dentro de una misma transacción.
type Plan struct {
	Steps      []Step
	ReplyFolio string // solo si el plan crea una respuesta
}

// CreatesReply indica si el plan incluye la creación de una respuesta formal.
func (p Plan) CreatesReply() bool {
	return p.ReplyFolio != ""
}

// IsTransitionTarget indica si se puede cambiar a s. El estado 1 solo se asigna al registrar o turnar.
func IsTransitionTarget(s entity.Status) bool {
	switch s {
	case entity.StatusAdmin, entity.StatusResponded, entity.StatusDerived,
		entity.StatusConcludedA, entity.StatusConcludedB:
		return true
	}
	return false
}

// PlanTransition valida el cambio de estado y devuelve los pasos que lo aplican.
//
//   - 2, 5, 6 y 3 sin adjunto: actualizan la entrada vigente.
//   - 3 con adjunto: crea la respuesta (<folio>-1), le agrega una entrada en 3 y marca la original en 3.
//   - 4: marca la entrada vigente como turnada y agrega una entrada en 1 para el puesto destino.
//
// Cualquier otro estado devuelve domain.ErrInvalidInput sin pasos.
func PlanTransition(st TransitionState, req TransitionRequest) (Plan, error) {
	if !IsTransitionTarget(req.Status) {
		return Plan{}, fmt.Errorf("%w: estado %d no permitido", domain.ErrInvalidInput, req.Status)
	}
	if req.Status == entity.StatusDerived && req.TargetPositionID == nil {
		return Plan{}, fmt.Errorf("%w: para turnar se requiere el puesto destino", domain.ErrInvalidInput)
	}

	latest := st.Current.Latest
	if latest == nil {
		return Plan{}, fmt.Errorf("%w: la correspondencia %d no tiene estado registrado", domain.ErrNotFound, st.Current.ID)
	}

	switch {
	case req.Status == entity.StatusDerived:
		return Plan{Steps: []Step{
			Mutate{EntryID: latest.ID, Status: entity.StatusDerived, Observations: req.Observations},
			Append{Entry: entity.StateEntry{
				CorrespondenceID: st.Current.ID,
				HolderPositionID: *req.TargetPositionID,
				Status:           entity.StatusReceived,
				Observations:     req.Observations,
				ActorUserID:      req.ActorUserID,
			}},
		}}, nil

	case req.Status == entity.StatusResponded && req.HasAttachment:
		return planReply(st, req, latest)

	default:
		return Plan{Steps: []Step{
			Mutate{
				EntryID:          latest.ID,
				Status:           req.Status,
				Observations:     req.Observations,
				HolderPositionID: req.TargetPositionID,
			},
		}}, nil
	}
}

func planReply(st TransitionState, req TransitionRequest, latest *entity.StateEntry) (Plan, error) {
	if st.Current.IsReply() {
		return Plan{}, fmt.Errorf("%w: una respuesta no puede responderse", domain.ErrConflict)
	}
	if st.ReplyExists {
		return Plan{}, fmt.Errorf("%w: el folio %s ya tiene respuesta", domain.ErrConflict, st.Current.FolioSistema)
	}
	replyFolio, err := folio.ReplyFolio(st.Current.FolioSistema)
	if err != nil {
		return Plan{}, err
	}

	holder := latest.HolderPositionID
	if req.TargetPositionID != nil {
		holder = *req.TargetPositionID
	}
	return Plan{
		ReplyFolio: replyFolio,
		Steps: []Step{
			CreateReply{Folio: replyFolio},
			Append{ForReply: true, Entry: entity.StateEntry{
				HolderPositionID: holder,
				Status:           entity.StatusResponded,
				Observations:     req.Observations,
				ActorUserID:      req.ActorUserID,
			}},
			Mutate{
				EntryID:          latest.ID,
				Status:           entity.StatusResponded,
				Observations:     req.Observations,
				HolderPositionID: req.TargetPositionID,
			},
		},
	}, nil
}
