package bench

import "fmt"

// Table names of the fixture schema.
const (
	TableOrganizations = "organizations"
	TableUsers         = "users"
	TableUserPassports = "user_passports"
	TableBooks         = "books"
	TableMovies        = "movies"
	TableVideogames    = "videogames"
	TableHobbies       = "hobbies"
	TableVinyls        = "vinyls"
	TablePets          = "pets"
	TableSkills        = "skills"
	TableDreams        = "dreams"
)

// LeafTable describes one of the eight per-user child tables.
// Every leaf table has an id, a user_id foreign key and exactly one descriptive text column.
type LeafTable struct {
	Name       string
	TextColumn string
	TextPrefix string
}

// SeedText returns the synthetic text stored in the text column for the j-th row of a user.
func (t LeafTable) SeedText(j int) string {
	return fmt.Sprintf("%s %d", t.TextPrefix, j)
}

func (t LeafTable) String() string {
	return t.Name
}

var leafTables = []LeafTable{
	{Name: TableBooks, TextColumn: "title", TextPrefix: "Book"},
	{Name: TableMovies, TextColumn: "title", TextPrefix: "Title"},
	{Name: TableVideogames, TextColumn: "title", TextPrefix: "Title"},
	{Name: TableHobbies, TextColumn: "title", TextPrefix: "Title"},
	{Name: TableVinyls, TextColumn: "title", TextPrefix: "Title"},
	{Name: TablePets, TextColumn: "name", TextPrefix: "Name"},
	{Name: TableSkills, TextColumn: "title", TextPrefix: "Title"},
	{Name: TableDreams, TextColumn: "description", TextPrefix: "Description"},
}

// LeafTables returns the eight leaf tables in their fixed order.
// The first entry is the designated worker of the shared-memory phase.
func LeafTables() []LeafTable {
	tables := make([]LeafTable, len(leafTables))
	copy(tables, leafTables)

	return tables
}

// LeafTableByName looks up a leaf table by its table name.
func LeafTableByName(name string) (LeafTable, error) {
	for _, t := range leafTables {
		if t.Name == name {
			return t, nil
		}
	}

	return LeafTable{}, fmt.Errorf("%w: %q", ErrUnknownLeafTable, name)
}

// SchemaTables returns all eleven table names in creation order (parents before children).
func SchemaTables() []string {
	names := []string{TableOrganizations, TableUsers, TableUserPassports}
	for _, t := range leafTables {
		names = append(names, t.Name)
	}

	return names
}
