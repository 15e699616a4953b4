package entity

import "time"

// Position puesto que ocupa un usuario dentro de un área (rl_usuario_puesto).
// Lo administra otro sistema; aquí solo se lee.
type Position struct {
	ID      int64
	UserID  int64
	AreaID  int64
	Active  bool
	EndDate *time.Time // nil = puesto vigente
}

// IsHeld indica si el usuario ocupa actualmente el puesto.
func (p *Position) IsHeld() bool {
	return p.Active && p.EndDate == nil
}
