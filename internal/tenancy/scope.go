package tenancy

import (
	"context"

	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/models"
)

// Scope restricts which Application and User rows an identity may see.
// A Scope is an immutable value derived from the identity of a single
// request and threaded through context; it is never stored in shared
// mutable state, so concurrent requests for different identities cannot
// observe each other's visibility.
//
// Rules:
//   - super admin (admin role, no scholarship): unrestricted.
//   - any identity bound to a scholarship: applications restricted to that
//     scholarship.
//   - committee members and scoped admins: users restricted to their own
//     scholarship, plus admin accounts.
//   - students: users restricted to their own record.
type Scope struct {
	identity Identity
}

// ScopeFor derives the row-level scope for the given identity.
func ScopeFor(identity Identity) Scope {
	return Scope{identity: identity}
}

// Identity returns the identity the scope was derived from.
func (s Scope) Identity() Identity {
	return s.identity
}

// Applications returns the predicate applied to every application query.
func (s Scope) Applications() func(*gorm.DB) *gorm.DB {
	if s.identity.IsSuperAdmin() || s.identity.ScholarshipID == nil {
		return passthrough
	}
	scholarshipID := *s.identity.ScholarshipID
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("scholarship_id = ?", scholarshipID)
	}
}

// Users returns the predicate applied to every user query.
func (s Scope) Users() func(*gorm.DB) *gorm.DB {
	if s.identity.IsSuperAdmin() {
		return passthrough
	}

	if s.identity.IsStudent() {
		userID := s.identity.UserID
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("id = ?", userID)
		}
	}

	if s.identity.ScholarshipID != nil {
		scholarshipID := *s.identity.ScholarshipID
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("scholarship_id = ? OR role = ?", scholarshipID, models.RoleAdmin)
		}
	}

	return passthrough
}

// AllowsApplication reports whether the scope admits the given row. This
// is the in-memory form of Applications, used for write-path checks.
func (s Scope) AllowsApplication(application models.Application) bool {
	if s.identity.IsSuperAdmin() || s.identity.ScholarshipID == nil {
		return true
	}
	return application.ScholarshipID == *s.identity.ScholarshipID
}

// AllowsUser reports whether the scope admits the given user row.
func (s Scope) AllowsUser(user models.User) bool {
	if s.identity.IsSuperAdmin() {
		return true
	}

	if s.identity.IsStudent() {
		return user.ID == s.identity.UserID
	}

	if s.identity.ScholarshipID != nil {
		if user.Role == models.RoleAdmin {
			return true
		}
		return user.ScholarshipID != nil && *user.ScholarshipID == *s.identity.ScholarshipID
	}

	return true
}

// Unrestricted reports whether the scope applies no filtering at all.
func (s Scope) Unrestricted() bool {
	return s.identity.IsSuperAdmin()
}

func passthrough(db *gorm.DB) *gorm.DB {
	return db
}

type scopeContextKey struct{}

// WithScope binds the scope to the request context.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// FromContext extracts the scope bound to the request context. The second
// return value is false when no identity has been established.
func FromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	scope, ok := ctx.Value(scopeContextKey{}).(Scope)
	return scope, ok
}
