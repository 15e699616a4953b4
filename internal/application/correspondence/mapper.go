package correspondence

import (
	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
)

func toCorrespondenceResponse(c *entity.Correspondence, latest *entity.StateEntry, history []entity.StateEntry) *dto.CorrespondenceResponse {
	if c == nil {
		return nil
	}
	out := &dto.CorrespondenceResponse{
		ID:                   c.ID,
		FolioSistema:         c.FolioSistema,
		FolioCorrespondencia: c.FolioCorrespondencia,
		PriorityID:           c.PriorityID,
		DeliveryMethodID:     c.DeliveryMethodID,
		Summary:              c.Summary,
		CorrespondenceDate:   c.CorrespondenceDate.Format(dateLayout),
		FileName:             c.FileName,
		SenderPositionID:     c.SenderPositionID,
		ParentID:             c.ParentID,
		CreatedBy:            c.CreatedBy,
		EditedBy:             c.EditedBy,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
	if latest != nil {
		e := toStateEntryResponse(*latest)
		out.Current = &e
	}
	if len(history) > 0 {
		out.History = make([]dto.StateEntryResponse, 0, len(history))
		for _, h := range history {
			out.History = append(out.History, toStateEntryResponse(h))
		}
	}
	return out
}

func toStateEntryResponse(e entity.StateEntry) dto.StateEntryResponse {
	return dto.StateEntryResponse{
		ID:               e.ID,
		HolderPositionID: e.HolderPositionID,
		Status:           int(e.Status),
		StatusName:       e.Status.String(),
		Observations:     e.Observations,
		ActorUserID:      e.ActorUserID,
		CreatedAt:        e.CreatedAt,
	}
}
