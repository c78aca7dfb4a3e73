package bench

// SeededOrganizationName is the name of the single organization the seeder creates.
const SeededOrganizationName = "Test Org"

// Age range of seeded users, both bounds inclusive.
const (
	MinUserAge = 18
	MaxUserAge = 50
)

// Organization is the root of the fixture graph.
type Organization struct {
	ID   int64
	Name string
}

// User belongs to exactly one Organization.
type User struct {
	ID             int64
	Name           string
	Age            int
	OrganizationID int64
}

// LeafRecord is one row of a leaf table.
type LeafRecord struct {
	ID     int64
	UserID int64
	Text   string
}

// LeafRecords is a slice of LeafRecord.
type LeafRecords []LeafRecord

// SeedParams controls the shape of the seeded dataset.
type SeedParams struct {
	UserCount   int
	LeafPerUser int
}

// Validate checks that both parameters are non-negative.
func (p SeedParams) Validate() error {
	if p.UserCount < 0 || p.LeafPerUser < 0 {
		return ErrInvalidSeedParameters
	}

	return nil
}

// RowsPerLeafTable is the number of rows every leaf table holds after seeding.
func (p SeedParams) RowsPerLeafTable() int {
	return p.UserCount * p.LeafPerUser
}

// ExpectedRows is the total number of rows the seeder inserts: 1 + U + 8*U*L.
func (p SeedParams) ExpectedRows() int {
	return 1 + p.UserCount + len(leafTables)*p.RowsPerLeafTable()
}

// SeedSummary reports what the seeder inserted.
type SeedSummary struct {
	OrganizationID   int64          `json:"organization_id"`
	Organizations    int            `json:"organizations"`
	Users            int            `json:"users"`
	LeafRowsPerTable map[string]int `json:"leaf_rows_per_table"`
}

// TotalRows sums all inserted rows.
func (s SeedSummary) TotalRows() int {
	total := s.Organizations + s.Users
	for _, n := range s.LeafRowsPerTable {
		total += n
	}

	return total
}
