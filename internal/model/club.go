package model

// ClubID identifies a canonical club in the directory
type ClubID string

// Club is a canonical directory record
type Club struct {
	ID      ClubID   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Logo    string   `json:"logo,omitempty"`
	Town    string   `json:"town,omitempty"`
	Canton  string   `json:"canton,omitempty"`
}

// ClubHistoryEntry is one career stint on a sub-profile.
// Years are plain four digit strings; EndYear is empty while the stint is current.
type ClubHistoryEntry struct {
	ClubID    *ClubID  `json:"club_id,omitempty"`
	ClubName  string   `json:"club_name"`
	Country   string   `json:"country,omitempty"`
	Leagues   []string `json:"leagues,omitempty"`
	StartYear string   `json:"start_year,omitempty"`
	EndYear   string   `json:"end_year,omitempty"`
	IsCurrent bool     `json:"is_current"`
	CoachRole string   `json:"coach_role,omitempty"` // recruiter entries only
}

// IsExternal reports whether the entry has no canonical club reference
func (e ClubHistoryEntry) IsExternal() bool {
	return e.ClubID == nil
}

func cloneHistory(entries []ClubHistoryEntry) []ClubHistoryEntry {
	if entries == nil {
		return nil
	}
	out := make([]ClubHistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		out[i].Leagues = append([]string(nil), e.Leagues...)
		if e.ClubID != nil {
			id := *e.ClubID
			out[i].ClubID = &id
		}
	}
	return out
}

// CloneHistory returns a deep copy of a club history list
func CloneHistory(entries []ClubHistoryEntry) []ClubHistoryEntry {
	return cloneHistory(entries)
}
