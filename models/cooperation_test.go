package models

import (
	"testing"
	"time"
)

func coop(status string, expires *time.Time, granted ...string) MeetingCooperation {
	c := MeetingCooperation{Status: status, ExpiresAt: expires}
	c.SetGrantedPermissions(granted)
	return c
}

func TestCooperationIsActive(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name string
		c    MeetingCooperation
		want bool
	}{
		{"approved no expiry", coop(CooperationApproved, nil), true},
		{"approved future expiry", coop(CooperationApproved, &future), true},
		{"approved past expiry", coop(CooperationApproved, &past), false},
		{"pending", coop(CooperationPending, nil), false},
		{"rejected", coop(CooperationRejected, nil), false},
		{"revoked", coop(CooperationRevoked, nil), false},
		{"expired status", coop(CooperationExpired, nil), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.IsActive(now); got != tc.want {
				t.Errorf("IsActive = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCooperationHasPermission(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	active := coop(CooperationApproved, nil, PermissionView, PermissionModerate)
	if !active.HasPermission(PermissionModerate, now) {
		t.Error("active cooperation should grant moderate")
	}
	if active.HasPermission(PermissionEdit, now) {
		t.Error("edit was never granted")
	}

	// A lapsed expiry blocks authorization even while the stored status is
	// still approved.
	lapsed := coop(CooperationApproved, &past, PermissionView)
	if lapsed.HasPermission(PermissionView, now) {
		t.Error("lapsed cooperation must not authorize")
	}
}

func TestPermissionRoundTrip(t *testing.T) {
	var c MeetingCooperation
	c.SetRequestedPermissions([]string{PermissionEdit, PermissionView})
	got := c.RequestedPermissions()
	if len(got) != 2 || got[0] != PermissionEdit || got[1] != PermissionView {
		t.Errorf("RequestedPermissions = %v", got)
	}

	c.SetGrantedPermissions(nil)
	if g := c.GrantedPermissions(); len(g) != 0 {
		t.Errorf("nil grant should decode empty, got %v", g)
	}
}
