package models

// StaffRecord is a staff member as listed in the staff directory.
type StaffRecord struct {
	Name        string   `bson:"name" json:"name"`
	Email       string   `bson:"email" json:"email"`
	CommitHours int      `bson:"commitHours" json:"commitHours"`
	Teams       []string `bson:"teams" json:"-"`
}

// UnknownStaffName is used when a directory row has no name.
const UnknownStaffName = "Unknown"

// InTeam reports whether the record lists team among its memberships.
func (s StaffRecord) InTeam(team string) bool {
	for _, t := range s.Teams {
		if t == team {
			return true
		}
	}
	return false
}
