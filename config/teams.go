package config

// TeamEntry maps a team's display name to its configuration source and
// submission target in the backing store.
type TeamEntry struct {
	Name     string `mapstructure:"name"`
	ConfigID string `mapstructure:"config_id"`
	SubmitID string `mapstructure:"submit_id"`
}

// TeamDirectory is the static team table, built once at startup.
type TeamDirectory struct {
	names   []string
	entries map[string]TeamEntry
}

// NewTeamDirectory keeps entries in the given order. A repeated name replaces
// the earlier entry but keeps its position.
func NewTeamDirectory(entries ...TeamEntry) *TeamDirectory {
	d := &TeamDirectory{entries: make(map[string]TeamEntry, len(entries))}
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		if _, seen := d.entries[e.Name]; !seen {
			d.names = append(d.names, e.Name)
		}
		d.entries[e.Name] = e
	}
	return d
}

// TeamDirectory builds the team table: explicit TEAMS entries when present,
// otherwise the three built-in teams wired from their env ids.
func (c *Config) TeamDirectory() *TeamDirectory {
	if len(c.Teams) > 0 {
		return NewTeamDirectory(c.Teams...)
	}
	return NewTeamDirectory(
		TeamEntry{Name: "VietQ Media", ConfigID: c.VietQConfigID, SubmitID: c.SubmissionDBID},
		TeamEntry{Name: "No Headliner", ConfigID: c.NoHeadlinerConfigID, SubmitID: c.SubmissionDBID},
		TeamEntry{Name: "Vietnam Indie Club", ConfigID: c.VICConfigID, SubmitID: c.SubmissionDBID},
	)
}

// Lookup returns the entry for a team.
func (d *TeamDirectory) Lookup(name string) (TeamEntry, bool) {
	e, ok := d.entries[name]
	return e, ok
}

// Names lists teams in display order.
func (d *TeamDirectory) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}
