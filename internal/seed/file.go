package seed

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/models"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a dataset. Phone numbers and activity tags are
// nested under their organization.
type File struct {
	Buildings     []BuildingEntry     `yaml:"buildings"`
	Activities    []ActivityEntry     `yaml:"activities"`
	Organizations []OrganizationEntry `yaml:"organizations"`
}

type BuildingEntry struct {
	ID         uuid.UUID `yaml:"id"`
	Address    string    `yaml:"address"`
	Coordinate *string   `yaml:"coordinate,omitempty"`
}

type ActivityEntry struct {
	ID       uuid.UUID  `yaml:"id"`
	Name     string     `yaml:"name"`
	ParentID *uuid.UUID `yaml:"parent_id,omitempty"`
}

type OrganizationEntry struct {
	ID           uuid.UUID   `yaml:"id"`
	Name         string      `yaml:"name"`
	BuildingID   uuid.UUID   `yaml:"building_id"`
	PhoneNumbers []string    `yaml:"phones,omitempty"`
	Activities   []uuid.UUID `yaml:"activities,omitempty"`
}

// Decode reads a YAML dataset and validates it. Phone and tag rows get fresh ids.
func Decode(r io.Reader) (*models.Dataset, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &models.Dataset{}, nil
		}
		return nil, fmt.Errorf("failed to parse dataset YAML: %w", err)
	}

	ds := f.Dataset()
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Encode writes ds as YAML.
func Encode(w io.Writer, ds *models.Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewFile(ds)); err != nil {
		return fmt.Errorf("failed to encode dataset YAML: %w", err)
	}
	return enc.Close()
}

// LoadFile reads and validates a YAML dataset from path.
func LoadFile(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// SaveFile writes ds to path as YAML.
func SaveFile(path string, ds *models.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}

	if err := Encode(f, ds); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// NewFile converts a dataset into its YAML layout.
func NewFile(ds *models.Dataset) *File {
	f := &File{}

	for _, b := range ds.Buildings {
		f.Buildings = append(f.Buildings, BuildingEntry{ID: b.ID, Address: b.Address, Coordinate: b.Coordinate})
	}
	for _, a := range ds.Activities {
		f.Activities = append(f.Activities, ActivityEntry{ID: a.ID, Name: a.Name, ParentID: a.ParentID})
	}

	index := make(map[uuid.UUID]int, len(ds.Organizations))
	for i, o := range ds.Organizations {
		index[o.ID] = i
		f.Organizations = append(f.Organizations, OrganizationEntry{ID: o.ID, Name: o.Name, BuildingID: o.BuildingID})
	}
	for _, p := range ds.OrganizationPhones {
		if i, ok := index[p.OrganizationID]; ok {
			f.Organizations[i].PhoneNumbers = append(f.Organizations[i].PhoneNumbers, p.PhoneNumber)
		}
	}
	for _, t := range ds.OrganizationActivities {
		if i, ok := index[t.OrganizationID]; ok {
			f.Organizations[i].Activities = append(f.Organizations[i].Activities, t.ActivityID)
		}
	}

	return f
}

// Dataset flattens the file into table rows.
func (f *File) Dataset() *models.Dataset {
	ds := &models.Dataset{}

	for _, b := range f.Buildings {
		ds.Buildings = append(ds.Buildings, models.Building{ID: b.ID, Address: b.Address, Coordinate: b.Coordinate})
	}
	for _, a := range f.Activities {
		ds.Activities = append(ds.Activities, models.Activity{ID: a.ID, Name: a.Name, ParentID: a.ParentID})
	}
	for _, o := range f.Organizations {
		ds.Organizations = append(ds.Organizations, models.Organization{ID: o.ID, Name: o.Name, BuildingID: o.BuildingID})
		for _, number := range o.PhoneNumbers {
			ds.OrganizationPhones = append(ds.OrganizationPhones, models.OrganizationPhone{
				ID:             uuid.Must(uuid.NewV7()),
				OrganizationID: o.ID,
				PhoneNumber:    number,
			})
		}
		for _, activityID := range o.Activities {
			ds.OrganizationActivities = append(ds.OrganizationActivities, models.OrganizationActivity{
				ID:             uuid.Must(uuid.NewV7()),
				OrganizationID: o.ID,
				ActivityID:     activityID,
			})
		}
	}

	return ds
}
