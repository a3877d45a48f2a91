package store

import (
	"strings"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

// Credential is one login account known to the dashboard. Secrets sourced
// from teacher records are stored as entered; seed secrets may instead be
// bcrypt hashes (detected by the auth layer).
type Credential struct {
	Username    string
	Secret      string
	Role        models.Role
	DisplayName string
	// RecordID links record-sourced credentials to their teacher record.
	// Empty for seed accounts.
	RecordID string
}

// DefaultSeeds are the built-in accounts available before any teacher
// record exists. They are development defaults; deployments override the
// secrets through configuration.
func DefaultSeeds() []Credential {
	return []Credential{
		{Username: "admin", Secret: "Admin123", Role: models.RoleAdmin, DisplayName: "Administrator"},
		{Username: "kepsek", Secret: "Kepsek123", Role: models.RolePrincipal, DisplayName: "Kepala Sekolah"},
		{Username: "bk", Secret: "Konseling123", Role: models.RoleCounselor, DisplayName: "Guru BK"},
		{Username: "siswa", Secret: "Siswa123", Role: models.RoleStudent, DisplayName: "Siswa"},
	}
}

// rebuildCredentials derives the username index from the current snapshot:
// seed accounts first, then teacher records carrying a username/password
// pair. A record reusing a seed username shadows the seed without removing
// it from the next rebuild. Caller holds s.mu.
func (s *Store) rebuildCredentials(records []models.Record) {
	creds := make(map[string]Credential, len(s.seeds))
	for _, seed := range s.seeds {
		creds[seed.Username] = seed
	}
	for _, rec := range records {
		teacher, ok := rec.(*models.Teacher)
		if !ok || teacher.Username == "" || teacher.Password == "" {
			continue
		}
		creds[teacher.Username] = Credential{
			Username:    teacher.Username,
			Secret:      teacher.Password,
			Role:        teacherRole(teacher.Role),
			DisplayName: teacher.Title,
			RecordID:    teacher.ID,
		}
	}
	s.creds = creds
}

// teacherRole maps the free-text role on a teacher record onto the viewer
// role enum. Counseling staff get the counselor role, everything else logs
// in as a teacher.
func teacherRole(role string) models.Role {
	if strings.Contains(strings.ToLower(role), "counsel") || strings.Contains(strings.ToLower(role), "bk") {
		return models.RoleCounselor
	}
	return models.RoleTeacher
}

// LookupCredential resolves a username. Read-only view for the auth layer.
func (s *Store) LookupCredential(username string) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[username]
	return cred, ok
}

// Credentials returns a copy of the full credential index.
func (s *Store) Credentials() map[string]Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Credential, len(s.creds))
	for username, cred := range s.creds {
		out[username] = cred
	}
	return out
}
