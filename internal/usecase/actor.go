package usecase

import "cledumemoire/internal/domain/model"

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }
