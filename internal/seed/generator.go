// Package seed produces directory datasets: a generated sample and YAML files.
package seed

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/secunda/directory/internal/geo"
	"github.com/secunda/directory/internal/models"
)

// Addresses are the sample building addresses.
var Addresses = []string{
	"Москва, Малый Купаввенский пр, д.5",
	"Москва, 2-й Кабельный пр, д.37",
	"Москва, Улица Разумовского, д.13",
	"Москва, Шоссе Энтузиастов, д.29",
	"Москва, Парк останкино, д.25",
}

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat, Lon float64
}

// Coordinates are the sample building positions in central Moscow.
var Coordinates = []Point{
	{55.753933, 37.620795},
	{55.752023, 37.617499},
	{55.729625, 37.603701},
	{55.829622, 37.637486},
	{55.764865, 37.607573},
	{55.760102, 37.618423},
}

var (
	namePrefixes = []string{"ООО", "ОАО", "ИП"}
	nameBases    = []string{"Автозвук", "Мясокомбинат", "Магазин продуктов"}
)

// Category is a root activity with its direct children.
type Category struct {
	Name     string
	Children []string
}

// Categories is the sample activity hierarchy.
var Categories = []Category{
	{Name: "Машины", Children: []string{"Колонки", "Провода", "Крепления"}},
	{Name: "Еда", Children: []string{"Убой скота", "Получение молока", "Разведение новых животных"}},
	{Name: "Продукты", Children: []string{"Продажа продуктов", "Продажа сигарет", "Продажа алкоголя"}},
}

// Options control dataset generation.
type Options struct {
	// Seed makes generation reproducible, ids included.
	Seed uint64

	// TagChildren tags each organization with its child activity instead of
	// the root activity of its category.
	TagChildren bool
}

// Generate builds the sample dataset. Each category gets one building holding
// one organization per child activity; every organization has one phone
// number and one activity tag.
func Generate(opts Options) *models.Dataset {
	g := newGenerator(opts.Seed)
	ds := &models.Dataset{}

	for _, category := range Categories {
		root := models.Activity{ID: g.id(), Name: category.Name}
		ds.Activities = append(ds.Activities, root)

		p := Coordinates[g.rng.IntN(len(Coordinates))]
		coordinate := geo.FormatCoordinate(p.Lat, p.Lon)
		building := models.Building{
			ID:         g.id(),
			Address:    g.pick(Addresses),
			Coordinate: &coordinate,
		}
		ds.Buildings = append(ds.Buildings, building)

		for _, childName := range category.Children {
			child := models.Activity{ID: g.id(), Name: childName, ParentID: &root.ID}
			ds.Activities = append(ds.Activities, child)

			org := models.Organization{
				ID:         g.id(),
				Name:       fmt.Sprintf("%s %s", g.pick(namePrefixes), g.pick(nameBases)),
				BuildingID: building.ID,
			}
			ds.Organizations = append(ds.Organizations, org)

			ds.OrganizationPhones = append(ds.OrganizationPhones, models.OrganizationPhone{
				ID:             g.id(),
				OrganizationID: org.ID,
				PhoneNumber:    g.phoneNumber(),
			})

			tagged := root.ID
			if opts.TagChildren {
				tagged = child.ID
			}
			ds.OrganizationActivities = append(ds.OrganizationActivities, models.OrganizationActivity{
				ID:             g.id(),
				OrganizationID: org.ID,
				ActivityID:     tagged,
			})
		}
	}

	return ds
}

type generator struct {
	src    *rand.ChaCha8
	rng    *rand.Rand
	phones map[string]struct{}
}

func newGenerator(seed uint64) *generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)

	return &generator{
		src:    src,
		rng:    rand.New(src),
		phones: make(map[string]struct{}),
	}
}

func (g *generator) id() uuid.UUID {
	// ChaCha8.Read never fails
	return uuid.Must(uuid.NewRandomFromReader(g.src))
}

func (g *generator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}

// phoneNumber returns a unique "+7" number with ten random digits.
func (g *generator) phoneNumber() string {
	for {
		n := fmt.Sprintf("+7%010d", g.rng.Int64N(10_000_000_000))
		if _, dup := g.phones[n]; !dup {
			g.phones[n] = struct{}{}
			return n
		}
	}
}
