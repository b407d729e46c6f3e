package domain

import (
	"testing"
	"time"
)

func TestReportStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to ReportStatus
		want     bool
	}{
		{ReportPending, ReportCompleted, true},
		{ReportPending, ReportFailed, true},
		{ReportPending, ReportPending, false},
		{ReportCompleted, ReportFailed, false},
		{ReportFailed, ReportCompleted, false},
		{ReportCompleted, ReportPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestIdentity_CanAccess(t *testing.T) {
	user := Identity{UserID: 7, Role: RoleUser}
	admin := Identity{UserID: 1, Role: RoleAdmin}

	if !user.CanAccess(7) {
		t.Fatalf("owner should access own report")
	}
	if user.CanAccess(8) {
		t.Fatalf("non-admin should not access another user's report")
	}
	if !admin.CanAccess(8) {
		t.Fatalf("admin should access any report")
	}
}

func TestBlacklistedToken_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := BlacklistedToken{ExpiresAt: now.Add(time.Minute)}

	if entry.Expired(now) {
		t.Fatalf("entry should still be active")
	}
	if !entry.Expired(now.Add(time.Minute)) {
		t.Fatalf("entry should be expired at its expiry instant")
	}
}

func TestReport_DownloadName(t *testing.T) {
	r := &Report{ID: 42}
	if got := r.DownloadName(); got != "report_42.csv" {
		t.Fatalf("unexpected download name %q", got)
	}
}
