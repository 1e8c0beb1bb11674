package authz

import (
	"testing"

	"github.com/journeymate/backend/internal/apperrors"
)

func TestOwnerOrAdmin(t *testing.T) {
	owner := Caller{ID: 7, Roles: []string{RoleUser}}
	other := Caller{ID: 8, Roles: []string{RoleUser}}
	admin := Caller{ID: 1, Roles: []string{RoleUser, RoleAdmin}}

	if err := OwnerOrAdmin(owner, 7); err != nil {
		t.Fatalf("owner should be allowed: %v", err)
	}
	if err := OwnerOrAdmin(admin, 7); err != nil {
		t.Fatalf("admin should be allowed: %v", err)
	}
	err := OwnerOrAdmin(other, 7)
	if !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAnyOfIgnoresZeroIDs(t *testing.T) {
	anonymous := Caller{}
	if err := AnyOf(anonymous, 0); err == nil {
		t.Fatalf("zero ids must never match")
	}
	requester := Caller{ID: 3}
	if err := AnyOf(requester, 9, 3); err != nil {
		t.Fatalf("expected match on second id: %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(Caller{Roles: []string{RoleUser}}); err == nil {
		t.Fatalf("expected forbidden for plain user")
	}
	if err := RequireAdmin(Caller{Roles: []string{RoleAdmin}}); err != nil {
		t.Fatalf("expected admin allowed: %v", err)
	}
}

func TestSelfOrAdmin(t *testing.T) {
	if err := SelfOrAdmin(Caller{ID: 3}, 3); err != nil {
		t.Fatalf("self should be allowed: %v", err)
	}
	if err := SelfOrAdmin(Caller{ID: 3}, 4); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := SelfOrAdmin(Caller{ID: 1, Roles: []string{RoleAdmin}}, 4); err != nil {
		t.Fatalf("admin should be allowed: %v", err)
	}
}
