package correspondence

import "github.com/jhoicas/oficialia-api/internal/domain/entity"

// VisibilityQuery quién consulta y qué vista pide.
// Sin Status ni All se devuelve la bandeja de entrada (estado 1).
type VisibilityQuery struct {
	UserID      int64
	PositionIDs []int64
	Status      *entity.Status
	All         bool
}

// IsVisible una correspondencia es visible para el usuario que la creó o para quien
// ocupe algún puesto que aparezca como poseedor en su historial.
func IsVisible(c *entity.CorrespondenceWithFullHistory, userID int64, positionIDs []int64) bool {
	if c.CreatedBy == userID {
		return true
	}
	held := positionSet(positionIDs)
	for _, e := range c.History {
		if _, ok := held[e.HolderPositionID]; ok {
			return true
		}
	}
	return false
}

// Matches aplica la regla de visibilidad y el filtro de estado.
// El filtro se evalúa contra la última entrada de cada puesto del usuario;
// las respuestas nunca aparecen en la vista de estado 3.
func Matches(c *entity.CorrespondenceWithFullHistory, q VisibilityQuery) bool {
	if !IsVisible(c, q.UserID, q.PositionIDs) {
		return false
	}
	if q.All {
		return true
	}
	status := entity.StatusReceived
	if q.Status != nil {
		status = *q.Status
	}
	if status == entity.StatusResponded && c.IsReply() {
		return false
	}

	held := positionSet(q.PositionIDs)
	latestByPosition := make(map[int64]entity.Status, len(held))
	for _, e := range c.History {
		if _, ok := held[e.HolderPositionID]; ok {
			latestByPosition[e.HolderPositionID] = e.Status
		}
	}
	for _, s := range latestByPosition {
		if s == status {
			return true
		}
	}
	return false
}

// Filter devuelve, en el mismo orden, las correspondencias que cumplen la consulta.
func Filter(list []entity.CorrespondenceWithFullHistory, q VisibilityQuery) []entity.CorrespondenceWithFullHistory {
	out := make([]entity.CorrespondenceWithFullHistory, 0, len(list))
	for i := range list {
		if Matches(&list[i], q) {
			out = append(out, list[i])
		}
	}
	return out
}

func positionSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
