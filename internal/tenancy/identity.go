package tenancy

import "github.com/iskolarhub/iskolar-api/internal/models"

// Identity captures who is making a request: the authenticated user's id,
// role, and optional scholarship affiliation. An admin with no scholarship
// is the super admin and is never restricted.
type Identity struct {
	UserID        uint
	Role          string
	ScholarshipID *uint
}

// SuperAdmin builds the unrestricted admin identity.
func SuperAdmin(userID uint) Identity {
	return Identity{UserID: userID, Role: models.RoleAdmin}
}

// ScopedAdmin builds an admin identity bound to a single program.
func ScopedAdmin(userID, scholarshipID uint) Identity {
	return Identity{UserID: userID, Role: models.RoleAdmin, ScholarshipID: &scholarshipID}
}

// CommitteeMember builds a committee identity for the given program.
func CommitteeMember(userID, scholarshipID uint) Identity {
	return Identity{UserID: userID, Role: models.RoleCommittee, ScholarshipID: &scholarshipID}
}

// Student builds a student identity for the given program.
func Student(userID, scholarshipID uint) Identity {
	return Identity{UserID: userID, Role: models.RoleStudent, ScholarshipID: &scholarshipID}
}

// IdentityOf derives the request identity from a user record.
func IdentityOf(user models.User) Identity {
	return Identity{UserID: user.ID, Role: user.Role, ScholarshipID: user.ScholarshipID}
}

// IsSuperAdmin reports whether this identity is unrestricted.
func (i Identity) IsSuperAdmin() bool {
	return i.Role == models.RoleAdmin && i.ScholarshipID == nil
}

// IsAdmin reports whether the identity holds the admin role, scoped or not.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// IsCommittee reports whether the identity is a committee reviewer.
func (i Identity) IsCommittee() bool {
	return i.Role == models.RoleCommittee
}

// IsStudent reports whether the identity is a student applicant.
func (i Identity) IsStudent() bool {
	return i.Role == models.RoleStudent
}

// CanReview reports whether the identity may move applications into
// approved or rejected.
func (i Identity) CanReview() bool {
	return i.Role == models.RoleAdmin || i.Role == models.RoleCommittee
}
