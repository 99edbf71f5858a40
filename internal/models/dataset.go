package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidDataset is returned by Validate when references or uniqueness
// constraints are broken.
var ErrInvalidDataset = errors.New("invalid dataset")

// MaxPhoneNumberLength matches the organization_phones.phone_number column.
const MaxPhoneNumberLength = 15

// Dataset is a complete snapshot of the directory, used for seeding stores.
type Dataset struct {
	Buildings              []Building
	Activities             []Activity
	Organizations          []Organization
	OrganizationPhones     []OrganizationPhone
	OrganizationActivities []OrganizationActivity
}

// Validate checks the same constraints the relational schema enforces.
func (d *Dataset) Validate() error {
	buildings := make(map[uuid.UUID]struct{}, len(d.Buildings))
	for _, b := range d.Buildings {
		if _, dup := buildings[b.ID]; dup {
			return fmt.Errorf("%w: duplicate building id %s", ErrInvalidDataset, b.ID)
		}
		buildings[b.ID] = struct{}{}
	}

	activities := make(map[uuid.UUID]struct{}, len(d.Activities))
	for _, a := range d.Activities {
		if _, dup := activities[a.ID]; dup {
			return fmt.Errorf("%w: duplicate activity id %s", ErrInvalidDataset, a.ID)
		}
		activities[a.ID] = struct{}{}
	}
	for _, a := range d.Activities {
		if a.ParentID == nil {
			continue
		}
		if _, ok := activities[*a.ParentID]; !ok {
			return fmt.Errorf("%w: activity %s references unknown parent %s", ErrInvalidDataset, a.ID, *a.ParentID)
		}
	}

	organizations := make(map[uuid.UUID]struct{}, len(d.Organizations))
	for _, o := range d.Organizations {
		if _, dup := organizations[o.ID]; dup {
			return fmt.Errorf("%w: duplicate organization id %s", ErrInvalidDataset, o.ID)
		}
		if _, ok := buildings[o.BuildingID]; !ok {
			return fmt.Errorf("%w: organization %s references unknown building %s", ErrInvalidDataset, o.ID, o.BuildingID)
		}
		organizations[o.ID] = struct{}{}
	}

	numbers := make(map[string]struct{}, len(d.OrganizationPhones))
	for _, p := range d.OrganizationPhones {
		if _, ok := organizations[p.OrganizationID]; !ok {
			return fmt.Errorf("%w: phone %s references unknown organization %s", ErrInvalidDataset, p.ID, p.OrganizationID)
		}
		if len(p.PhoneNumber) > MaxPhoneNumberLength {
			return fmt.Errorf("%w: phone number %q longer than %d", ErrInvalidDataset, p.PhoneNumber, MaxPhoneNumberLength)
		}
		if _, dup := numbers[p.PhoneNumber]; dup {
			return fmt.Errorf("%w: duplicate phone number %q", ErrInvalidDataset, p.PhoneNumber)
		}
		numbers[p.PhoneNumber] = struct{}{}
	}

	for _, t := range d.OrganizationActivities {
		if _, ok := organizations[t.OrganizationID]; !ok {
			return fmt.Errorf("%w: tag %s references unknown organization %s", ErrInvalidDataset, t.ID, t.OrganizationID)
		}
		if _, ok := activities[t.ActivityID]; !ok {
			return fmt.Errorf("%w: tag %s references unknown activity %s", ErrInvalidDataset, t.ID, t.ActivityID)
		}
	}

	return nil
}
