package models

import "github.com/google/uuid"

// Activity is a node in the activity hierarchy. Root activities have no parent.
type Activity struct {
	ID       uuid.UUID // UUIDv7
	Name     string
	ParentID *uuid.UUID
}

// IsRoot reports whether the activity sits at the top of the hierarchy.
func (a *Activity) IsRoot() bool {
	return a.ParentID == nil
}
