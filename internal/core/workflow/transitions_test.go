package workflow

import "testing"

func strp(s string) *string { return &s }
func idp(id int64) *int64   { return &id }

func TestApplyApproval(t *testing.T) {
	t.Run("assign moves pending item in progress", func(t *testing.T) {
		next := ApplyApproval(ItemState{Status: StatusPending}, KindAssign, 7, "take it")

		if next.Status != StatusInProgress {
			t.Errorf("Status = %q, want %q", next.Status, StatusInProgress)
		}
		if next.AssigneeID == nil || *next.AssigneeID != 7 {
			t.Errorf("AssigneeID = %v, want 7", next.AssigneeID)
		}
		if next.AssignReason == nil || *next.AssignReason != "take it" {
			t.Errorf("AssignReason = %v, want %q", next.AssignReason, "take it")
		}
		if !Consistent(next) {
			t.Error("expected consistent state")
		}
	})

	t.Run("unassign returns item to pending", func(t *testing.T) {
		cur := ItemState{Status: StatusInProgress, AssigneeID: idp(7), AssignReason: strp("take it")}
		next := ApplyApproval(cur, KindUnassign, 7, "blocked")

		if next.Status != StatusPending {
			t.Errorf("Status = %q, want %q", next.Status, StatusPending)
		}
		if next.AssigneeID != nil {
			t.Errorf("AssigneeID = %v, want nil", *next.AssigneeID)
		}
		if next.UnassignReason == nil || *next.UnassignReason != "blocked" {
			t.Errorf("UnassignReason = %v", next.UnassignReason)
		}
		if next.AssignReason == nil || *next.AssignReason != "take it" {
			t.Error("AssignReason should be carried over")
		}
		if !Consistent(next) {
			t.Error("expected consistent state")
		}
	})

	t.Run("completion keeps the assignee", func(t *testing.T) {
		cur := ItemState{Status: StatusInProgress, AssigneeID: idp(7), AssignReason: strp("take it")}
		next := ApplyApproval(cur, KindCompletion, 7, "done")

		if next.Status != StatusCompleted {
			t.Errorf("Status = %q, want %q", next.Status, StatusCompleted)
		}
		if next.AssigneeID == nil || *next.AssigneeID != 7 {
			t.Errorf("AssigneeID = %v, want 7", next.AssigneeID)
		}
		if next.CompletionReason == nil || *next.CompletionReason != "done" {
			t.Errorf("CompletionReason = %v", next.CompletionReason)
		}
	})

	t.Run("input state is not mutated", func(t *testing.T) {
		cur := ItemState{Status: StatusPending}
		_ = ApplyApproval(cur, KindAssign, 7, "take it")
		if cur.Status != StatusPending || cur.AssigneeID != nil || cur.AssignReason != nil {
			t.Errorf("input mutated: %+v", cur)
		}
	})
}

func TestConsistent(t *testing.T) {
	tests := []struct {
		name  string
		state ItemState
		want  bool
	}{
		{"pending without assignee", ItemState{Status: StatusPending}, true},
		{"pending with assignee", ItemState{Status: StatusPending, AssigneeID: idp(1)}, false},
		{"in progress with assignee", ItemState{Status: StatusInProgress, AssigneeID: idp(1)}, true},
		{"in progress without assignee", ItemState{Status: StatusInProgress}, false},
		{"completed with assignee", ItemState{Status: StatusCompleted, AssigneeID: idp(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Consistent(tt.state); got != tt.want {
				t.Errorf("Consistent = %v, want %v", got, tt.want)
			}
		})
	}
}
