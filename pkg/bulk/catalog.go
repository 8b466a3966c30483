// Package bulk models the admin bulk email form: recipient segments, selection, and the history
// of recent sends.
package bulk

// Segment is a named audience with a known member count.
type Segment struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Catalog lists the segments an admin may address.
type Catalog struct {
	Groups      []Segment `json:"groups"`
	Departments []Segment `json:"departments"`
}

// DefaultCatalog returns the university's recipient groups and departments.
func DefaultCatalog() Catalog {
	return Catalog{
		Groups: []Segment{
			{ID: "all", Name: "All Users", Count: 3256},
			{ID: "students", Name: "All Students", Count: 2847},
			{ID: "lecturers", Name: "All Lecturers", Count: 245},
			{ID: "staff", Name: "Administrative Staff", Count: 164},
		},
		Departments: []Segment{
			{ID: "arch", Name: "Architecture & Construction", Count: 856},
			{ID: "earth", Name: "Earth Sciences & Real Estate", Count: 724},
			{ID: "env", Name: "Environmental Science", Count: 612},
			{ID: "spatial", Name: "Spatial Planning", Count: 485},
			{ID: "ihss", Name: "Human Settlements Studies", Count: 170},
		},
	}
}

// Group looks up a group by ID.
func (c Catalog) Group(id string) (Segment, bool) {
	return find(c.Groups, id)
}

// Department looks up a department by ID.
func (c Catalog) Department(id string) (Segment, bool) {
	return find(c.Departments, id)
}

func find(segs []Segment, id string) (Segment, bool) {
	for _, s := range segs {
		if s.ID == id {
			return s, true
		}
	}
	return Segment{}, false
}
