// Package policy holds the pure read-visibility and write-eligibility
// decisions. It has no side effects and no knowledge of the store.
package policy

import "github.com/noah-isme/sma-dashboard-api/internal/models"

// Visible returns the read predicate for the viewer:
//   - admin and principal see every record,
//   - teachers and counselors see records they authored,
//   - students (and parents on their account) see approved records only.
func Visible(identity models.Identity) func(models.Record) bool {
	switch identity.Role {
	case models.RoleAdmin, models.RolePrincipal:
		return func(models.Record) bool { return true }
	case models.RoleTeacher, models.RoleCounselor:
		return func(rec models.Record) bool {
			return rec.Meta().Author == identity.DisplayName
		}
	default:
		return func(rec models.Record) bool {
			return rec.Meta().Approved
		}
	}
}

// CanMutate reports whether the viewer may update or delete the record:
// admins always, everyone else only on records they authored.
func CanMutate(identity models.Identity, rec models.Record) bool {
	if identity.Role == models.RoleAdmin {
		return true
	}
	return rec.Meta().Author != "" && rec.Meta().Author == identity.DisplayName
}
