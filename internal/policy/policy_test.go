package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
)

func note(author string, approved bool) models.Record {
	return &models.BehaviorNote{
		RecordMeta: models.RecordMeta{RecordType: models.TypeBehaviorNote, Author: author, Approved: approved},
	}
}

func TestVisibleByRole(t *testing.T) {
	mine := note("Siti", false)
	theirs := note("Rudi", false)
	approved := note("Rudi", true)

	admin := Visible(models.Identity{Role: models.RoleAdmin, DisplayName: "Head"})
	assert.True(t, admin(mine))
	assert.True(t, admin(theirs))

	principal := Visible(models.Identity{Role: models.RolePrincipal, DisplayName: "Head"})
	assert.True(t, principal(theirs))

	teacher := Visible(models.Identity{Role: models.RoleTeacher, DisplayName: "Siti"})
	assert.True(t, teacher(mine))
	assert.False(t, teacher(theirs))
	assert.False(t, teacher(approved), "approval does not widen teacher visibility")

	counselor := Visible(models.Identity{Role: models.RoleCounselor, DisplayName: "Rudi"})
	assert.True(t, counselor(theirs))
	assert.False(t, counselor(mine))

	student := Visible(models.Identity{Role: models.RoleStudent, DisplayName: "Andi"})
	assert.False(t, student(mine))
	assert.True(t, student(approved))
}

func TestCanMutate(t *testing.T) {
	rec := note("Siti", true)

	assert.True(t, CanMutate(models.Identity{Role: models.RoleAdmin, DisplayName: "Head"}, rec))
	assert.True(t, CanMutate(models.Identity{Role: models.RoleTeacher, DisplayName: "Siti"}, rec))

	for _, role := range []models.Role{models.RolePrincipal, models.RoleTeacher, models.RoleCounselor, models.RoleStudent} {
		assert.False(t, CanMutate(models.Identity{Role: role, DisplayName: "Somebody Else"}, rec),
			"role %s must not mutate another author's record", role)
	}
}

func TestCanMutateEmptyAuthor(t *testing.T) {
	rec := note("", true)
	assert.False(t, CanMutate(models.Identity{Role: models.RoleTeacher, DisplayName: ""}, rec))
	assert.True(t, CanMutate(models.Identity{Role: models.RoleAdmin}, rec))
}
