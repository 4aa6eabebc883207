package service

import "academics/internal/model"

// Actor is the authenticated caller as seen by services.
type Actor struct {
	UserID uint
	Role   model.Role
}
