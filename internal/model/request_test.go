package model

import "testing"

// TestStatusTransitionTable exercises every (from, to) pair against the
// lifecycle graph, including the reopen edges out of completed and
// rejected.
func TestStatusTransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusInProgress, StatusCompleted, StatusRejected}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusInProgress}:   true,
		{StatusPending, StatusCompleted}:    true,
		{StatusPending, StatusRejected}:     true,
		{StatusInProgress, StatusCompleted}: true,
		{StatusInProgress, StatusPending}:   true,
		{StatusCompleted, StatusInProgress}: true,
		{StatusRejected, StatusPending}:     true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "in_progress", "completed", "rejected"} {
		if _, ok := ParseStatus(valid); !ok {
			t.Errorf("ParseStatus(%q) rejected a valid status", valid)
		}
	}
	for _, invalid := range []string{"", "resolved", "approved", "PENDING", "done"} {
		if _, ok := ParseStatus(invalid); ok {
			t.Errorf("ParseStatus(%q) accepted an invalid status", invalid)
		}
	}
}

func TestParsePriority(t *testing.T) {
	for _, valid := range []string{"low", "medium", "high", "urgent"} {
		if _, ok := ParsePriority(valid); !ok {
			t.Errorf("ParsePriority(%q) rejected a valid priority", valid)
		}
	}
	if _, ok := ParsePriority("critical"); ok {
		t.Error("ParsePriority accepted an unknown priority")
	}
}
