package server

import (
	"github.com/secunda/directory/internal/api"
	"github.com/secunda/directory/internal/directory"
)

func toBuilding(b directory.BuildingRef) api.Building {
	return api.Building{ID: b.ID, Address: b.Address, Coordinate: b.Coordinate}
}

func toOrganizationRefs(refs []directory.OrganizationRef) []api.OrganizationRef {
	out := make([]api.OrganizationRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, api.OrganizationRef{ID: ref.ID, Name: ref.Name})
	}
	return out
}

func toOrganization(d directory.OrganizationDetail) api.Organization {
	return api.Organization{
		ID:           d.ID,
		Name:         d.Name,
		Building:     toBuilding(d.Building),
		PhoneNumbers: d.PhoneNumbers,
		Activities:   d.Activities,
	}
}
