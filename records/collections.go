package records

import "github.com/aagaur/studiocms/models"

// Sort orders list results. Column is the SQL column, Field the JSON name.
type Sort struct {
	Column string
	Field  string
	Desc   bool
	// NullsLast puts records without a value after all others in either direction.
	NullsLast bool
}

// Collection binds a schema to its model type and list behaviour.
type Collection struct {
	Name   string
	Label  string
	Schema Schema
	New    func() models.Record
	// NewList returns a pointer to an empty slice of the model type.
	NewList func() interface{}
	// Filters maps query parameters (JSON names) to columns usable for equality filters.
	Filters map[string]string
	Sorts   []Sort
}

var newestFirst = []Sort{{Column: "created_at", Field: "createdAt", Desc: true}}

var byDisplayOrder = []Sort{
	{Column: "sort_order", Field: "order"},
	{Column: "created_at", Field: "createdAt"},
}

var Projects = &Collection{
	Name:  "projects",
	Label: "Project",
	Schema: Schema{
		Fields: []Field{
			{Name: "title", Kind: Text, Required: true},
			{Name: "subtitle", Kind: Text},
			{Name: "location", Kind: Text},
			{Name: "projectType", Kind: Text},
			{Name: "category", Kind: Text},
			{Name: "status", Kind: Text},
			{Name: "year", Kind: Text},
			{Name: "client", Kind: Text},
			{Name: "description", Kind: Text, Sanitize: true},
			{Name: "area", Kind: JSON},
			{Name: "quote", Kind: JSON},
			{Name: "keyFeatures", Kind: JSON},
			{Name: "materialsUsed", Kind: JSON},
			{Name: "seoTags", Kind: JSON},
		},
		Images: Images{Main: "mainImage", MainRequired: true, Gallery: "galleryImages"},
	},
	New:     func() models.Record { return &models.Project{} },
	NewList: func() interface{} { return &[]models.Project{} },
	Filters: map[string]string{"category": "category", "status": "status", "projectType": "project_type", "year": "year"},
	Sorts:   newestFirst,
}

var Events = &Collection{
	Name:  "events",
	Label: "Event",
	Schema: Schema{
		Fields: []Field{
			{Name: "title", Kind: Text, Required: true},
			{Name: "tagline", Kind: Text},
			{Name: "description", Kind: Text, Sanitize: true},
			{Name: "date", Kind: Date},
			{Name: "categories", Kind: JSON},
		},
		Images: Images{Main: "mainImage", MainRequired: true, Gallery: "galleryImages"},
	},
	New:     func() models.Record { return &models.Event{} },
	NewList: func() interface{} { return &[]models.Event{} },
	Sorts:   []Sort{{Column: "date", Field: "date", Desc: true, NullsLast: true}, {Column: "created_at", Field: "createdAt", Desc: true}},
}

var Team = &Collection{
	Name:  "team",
	Label: "Team member",
	Schema: Schema{
		Fields: []Field{
			{Name: "name", Kind: Text, Required: true},
			{Name: "role", Kind: Text, Required: true},
			{Name: "specialty", Kind: Text},
			{Name: "bio", Kind: Text, Sanitize: true},
			{Name: "order", Kind: Number},
		},
		Images: Images{Main: "image", MainRequired: true},
	},
	New:     func() models.Record { return &models.TeamMember{} },
	NewList: func() interface{} { return &[]models.TeamMember{} },
	Filters: map[string]string{"role": "role"},
	Sorts:   byDisplayOrder,
}

var Interns = &Collection{
	Name:  "interns",
	Label: "Intern",
	Schema: Schema{
		Fields: []Field{
			{Name: "name", Kind: Text, Required: true},
			{Name: "university", Kind: Text},
			{Name: "bio", Kind: Text, Sanitize: true},
			{Name: "year", Kind: Text},
			{Name: "order", Kind: Number},
		},
		Images: Images{Main: "image", MainRequired: true},
	},
	New:     func() models.Record { return &models.Intern{} },
	NewList: func() interface{} { return &[]models.Intern{} },
	Filters: map[string]string{"year": "year", "university": "university"},
	Sorts:   byDisplayOrder,
}

// All lists every collection, in route order.
func All() []*Collection {
	return []*Collection{Projects, Events, Team, Interns}
}

// Models returns the gorm models to migrate, including bookkeeping tables.
func Models() []interface{} {
	out := []interface{}{}
	for _, c := range All() {
		out = append(out, c.New())
	}
	return append(out, &models.OrphanedAsset{})
}
