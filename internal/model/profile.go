package model

// DefaultProfileID is the id of the profile every installation starts with.
// It can never be deleted.
const DefaultProfileID = "default"

// Profile identifies an isolated bucket of planner data
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultProfile returns the built-in default profile
func DefaultProfile() Profile {
	return Profile{
		ID:   DefaultProfileID,
		Name: "Default",
	}
}

// BackupVersion is the current multi-profile backup format version
const BackupVersion = 1

// BackupProfile is one profile with its data inline
type BackupProfile struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Data AppData `json:"data"`
}

// Backup is a snapshot of every profile of an installation
type Backup struct {
	Version    int             `json:"version"`
	ExportDate string          `json:"exportDate"` // RFC 3339
	Profiles   []BackupProfile `json:"profiles"`
}
