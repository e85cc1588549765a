package review

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevanw/episodic/internal/plan"
)

func testPlan() *plan.Plan {
	return &plan.Plan{
		Items: []plan.Item{
			{SourcePath: "/tv/a.mkv", DestPath: "/tv/Show - S01E01.mkv", Status: plan.StatusPlanned},
			{SourcePath: "/tv/b.mkv", DestPath: "/tv/Show - S01E02.mkv", Status: plan.StatusPlanned},
		},
	}
}

func keyPress(k string) tea.KeyMsg {
	if k == "space" {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	if k == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestToggleSkipsAndRestores(t *testing.T) {
	p := testPlan()
	m := NewModel(p)

	m.Update(keyPress("space"))
	if p.Items[0].Status != plan.StatusSkipped || p.Items[0].Reason != plan.ReasonManual {
		t.Fatalf("expected manual skip, got %+v", p.Items[0])
	}

	m.Update(keyPress("space"))
	if p.Items[0].Status != plan.StatusPlanned {
		t.Fatalf("expected restored item, got %+v", p.Items[0])
	}
}

func TestToggleDoesNotRestoreBuilderSkips(t *testing.T) {
	p := testPlan()
	p.Items[0].Status = plan.StatusSkipped
	p.Items[0].Reason = plan.ReasonAlreadyNamed
	m := NewModel(p)

	m.Update(keyPress("space"))
	if p.Items[0].Status != plan.StatusSkipped {
		t.Fatalf("builder skip should be sticky, got %+v", p.Items[0])
	}
}

func TestSkippingConflictClearsCounterpart(t *testing.T) {
	p := &plan.Plan{
		Items: []plan.Item{
			{SourcePath: "/tv/a.mkv", DestPath: "/tv/Show - S01E01.mkv", Status: plan.StatusPlanned},
			{SourcePath: "/tv/b.mkv", DestPath: "/tv/Show - S01E01.mkv", Status: plan.StatusPlanned},
		},
	}
	p.Revalidate()
	if p.Items[0].Status != plan.StatusConflict {
		t.Fatal("expected conflict setup")
	}

	m := NewModel(p)
	m.Update(keyPress("space"))

	if p.Items[0].Status != plan.StatusSkipped {
		t.Errorf("item 0: expected skipped, got %s", p.Items[0].Status)
	}
	if p.Items[1].Status != plan.StatusPlanned {
		t.Errorf("item 1: expected planned after counterpart skipped, got %s", p.Items[1].Status)
	}
}

func TestApproveBlockedOnConflicts(t *testing.T) {
	p := &plan.Plan{
		Items: []plan.Item{
			{SourcePath: "/tv/a.mkv", DestPath: "/tv/x.mkv", Status: plan.StatusConflict},
		},
	}
	m := NewModel(p)

	m.Update(keyPress("enter"))
	if m.Approved() {
		t.Fatal("approve must be blocked while conflicts remain")
	}
}

func TestApproveAndQuit(t *testing.T) {
	m := NewModel(testPlan())

	_, cmd := m.Update(keyPress("enter"))
	if !m.Approved() {
		t.Fatal("expected approval")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestQuitWithoutApproval(t *testing.T) {
	m := NewModel(testPlan())

	_, cmd := m.Update(keyPress("q"))
	if m.Approved() {
		t.Fatal("quit must not approve")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestCursorMovement(t *testing.T) {
	m := NewModel(testPlan())

	m.Update(keyPress("j"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	m.Update(keyPress("j"))
	if m.cursor != 1 {
		t.Errorf("cursor should clamp at last item, got %d", m.cursor)
	}
	m.Update(keyPress("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}
