package correspondence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/correspondence"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
)

func int64Ptr(v int64) *int64 { return &v }

func stateWith(folioSistema string, status entity.Status, holder int64) correspondence.TransitionState {
	return correspondence.TransitionState{
		Current: entity.CorrespondenceWithLatestEntry{
			Correspondence: entity.Correspondence{ID: 7, FolioSistema: folioSistema},
			Latest:         &entity.StateEntry{ID: 70, CorrespondenceID: 7, HolderPositionID: holder, Status: status},
		},
	}
}

func TestPlanTransition_EstadosNoPermitidos(t *testing.T) {
	for _, s := range []entity.Status{0, entity.StatusReceived, 7, -3} {
		plan, err := correspondence.PlanTransition(stateWith("ABCD-WXYZ-0007", entity.StatusReceived, 10),
			correspondence.TransitionRequest{Status: s})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "estado %d", s)
		assert.Empty(t, plan.Steps)
	}
}

func TestPlanTransition_ActualizacionSimple(t *testing.T) {
	for _, s := range []entity.Status{entity.StatusAdmin, entity.StatusConcludedA, entity.StatusConcludedB, entity.StatusResponded} {
		plan, err := correspondence.PlanTransition(stateWith("ABCD-WXYZ-0007", entity.StatusReceived, 10),
			correspondence.TransitionRequest{Status: s, Observations: "ok", TargetPositionID: int64Ptr(11)})
		require.NoError(t, err)
		require.Len(t, plan.Steps, 1)
		m, ok := plan.Steps[0].(correspondence.Mutate)
		require.True(t, ok, "debe ser Mutate")
		assert.Equal(t, int64(70), m.EntryID)
		assert.Equal(t, s, m.Status)
		assert.Equal(t, "ok", m.Observations)
		assert.Equal(t, int64(11), *m.HolderPositionID)
		assert.False(t, plan.CreatesReply())
	}
}

func TestPlanTransition_SinEntradaVigente(t *testing.T) {
	st := stateWith("ABCD-WXYZ-0007", entity.StatusReceived, 10)
	st.Current.Latest = nil
	_, err := correspondence.PlanTransition(st, correspondence.TransitionRequest{Status: entity.StatusConcludedA})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanTransition_TurnarRequierePuesto(t *testing.T) {
	_, err := correspondence.PlanTransition(stateWith("ABCD-WXYZ-0007", entity.StatusReceived, 10),
		correspondence.TransitionRequest{Status: entity.StatusDerived})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlanTransition_Turnar(t *testing.T) {
	plan, err := correspondence.PlanTransition(stateWith("ABCD-WXYZ-0007", entity.StatusReceived, 10),
		correspondence.TransitionRequest{ActorUserID: 5, Status: entity.StatusDerived, Observations: "para atención", TargetPositionID: int64Ptr(20)})
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)

	m := plan.Steps[0].(correspondence.Mutate)
	assert.Equal(t, entity.StatusDerived, m.Status)
	assert.Nil(t, m.HolderPositionID, "la entrada turnada conserva su puesto de origen")

	a := plan.Steps[1].(correspondence.Append)
	assert.False(t, a.ForReply)
	assert.Equal(t, int64(7), a.Entry.CorrespondenceID)
	assert.Equal(t, int64(20), a.Entry.HolderPositionID)
	assert.Equal(t, entity.StatusReceived, a.Entry.Status)
	assert.Equal(t, int64(5), a.Entry.ActorUserID)
}

func TestPlanTransition_RespuestaConAdjunto(t *testing.T) {
	plan, err := correspondence.PlanTransition(stateWith("ABCD-WXYZ-0007", entity.StatusReceived, 10),
		correspondence.TransitionRequest{Status: entity.StatusResponded, HasAttachment: true})
	require.NoError(t, err)
	assert.True(t, plan.CreatesReply())
	assert.Equal(t, "ABCD-WXYZ-0007-1", plan.ReplyFolio)
	require.Len(t, plan.Steps, 3)

	assert.Equal(t, correspondence.CreateReply{Folio: "ABCD-WXYZ-0007-1"}, plan.Steps[0])
	a := plan.Steps[1].(correspondence.Append)
	assert.True(t, a.ForReply)
	assert.Equal(t, entity.StatusResponded, a.Entry.Status)
	assert.Equal(t, int64(10), a.Entry.HolderPositionID)
	m := plan.Steps[2].(correspondence.Mutate)
	assert.Equal(t, int64(70), m.EntryID)
	assert.Equal(t, entity.StatusResponded, m.Status)
}

func TestPlanTransition_RespuestaDeRespuesta(t *testing.T) {
	_, err := correspondence.PlanTransition(stateWith("ABCD-WXYZ-0007-1", entity.StatusResponded, 10),
		correspondence.TransitionRequest{Status: entity.StatusResponded, HasAttachment: true})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPlanTransition_RespuestaConPadreSinSufijo(t *testing.T) {
	st := stateWith("ABCD-WXYZ-0007", entity.StatusResponded, 10)
	st.Current.ParentID = int64Ptr(3)
	_, err := correspondence.PlanTransition(st,
		correspondence.TransitionRequest{Status: entity.StatusResponded, HasAttachment: true})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPlanTransition_RespuestaDuplicada(t *testing.T) {
	st := stateWith("ABCD-WXYZ-0007", entity.StatusResponded, 10)
	st.ReplyExists = true
	_, err := correspondence.PlanTransition(st,
		correspondence.TransitionRequest{Status: entity.StatusResponded, HasAttachment: true})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
