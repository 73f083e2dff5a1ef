package models

import "testing"

func TestNormalizePriority(t *testing.T) {
	cases := map[string]IssuePriority{
		"":        Normal,
		"low":     Low,
		" LOW ":   Low,
		"high":    High,
		"medium":  Normal,
		"normal":  Normal,
		"urgent!": Normal,
	}
	for in, want := range cases {
		if got := NormalizePriority(in); got != want {
			t.Errorf("NormalizePriority(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, st := range Statuses {
		got, ok := ParseStatus(string(st))
		if !ok || got != st {
			t.Errorf("ParseStatus(%q) = %q, %v", st, got, ok)
		}
	}
	if got, ok := ParseStatus(" In-Progress "); !ok || got != InProgress {
		t.Errorf("ParseStatus mixed case = %q, %v", got, ok)
	}
	for _, bad := range []string{"", "closed", "in progress", "done"} {
		if _, ok := ParseStatus(bad); ok {
			t.Errorf("ParseStatus(%q) accepted", bad)
		}
	}
}

func TestStatusRank(t *testing.T) {
	if !(Pending.Rank() < InProgress.Rank() && InProgress.Rank() < Resolved.Rank()) {
		t.Error("lifecycle ranks out of order")
	}
	if IssueStatus("closed").Rank() != -1 {
		t.Error("unknown status should rank -1")
	}
}

func TestDepartmentPassword(t *testing.T) {
	d := &Department{Password: "publicworks123"}
	if err := d.HashPassword(); err != nil {
		t.Fatal(err)
	}
	if d.Password == "publicworks123" {
		t.Fatal("password stored in plaintext")
	}
	if !d.ComparePassword("publicworks123") {
		t.Error("correct password rejected")
	}
	if d.ComparePassword("publicworks124") {
		t.Error("wrong password accepted")
	}
}
