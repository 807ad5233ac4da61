package models

import (
	"encoding/json"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestValidateTask(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		task   Task
		fields []string
	}{
		{
			name: "valid",
			task: Task{Title: "t", EstimateDesign: ptr(13)},
		},
		{
			name:   "no estimates",
			task:   Task{Title: "t"},
			fields: []string{"estimates"},
		},
		{
			name:   "estimate outside scale",
			task:   Task{Title: "t", EstimateBackend: ptr(4)},
			fields: []string{"estimate_backend"},
		},
		{
			name:   "missing title and bad link",
			task:   Task{EstimateQA: ptr(1), PrototypeLink: "not a url"},
			fields: []string{"title", "prototype_link"},
		},
		{
			name:   "end before start",
			task:   Task{Title: "t", EstimateQA: ptr(2), StartDate: &start, EndDate: ptr(start.Add(-time.Hour))},
			fields: []string{"end_date"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := tt.task
			task.ApplyDefaults()
			err := Validate(&task)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("Validate = %v, want nil", err)
				}
				return
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Validate = %v, want *ValidationError", err)
			}
			if len(verr.Fields) != len(tt.fields) {
				t.Errorf("fields = %v, want %v", verr.Fields, tt.fields)
			}
			for _, f := range tt.fields {
				if verr.Fields[f] == "" {
					t.Errorf("missing message for %s in %v", f, verr.Fields)
				}
			}
		})
	}
}

func TestValidateMemberAndSprint(t *testing.T) {
	m := TeamMember{Name: "Ana", SquadID: 1, Specialty: SpecialtyQA}
	m.ApplyDefaults()
	if err := Validate(&m); !IsValidation(err) {
		t.Errorf("zero capacity accepted: %v", err)
	}

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	sp := Sprint{Name: "S", SquadID: 1, StartDate: day, EndDate: day}
	sp.ApplyDefaults()
	err := Validate(&sp)
	if verr, ok := err.(*ValidationError); !ok || verr.Fields["end_date"] == "" {
		t.Errorf("same day sprint = %v, want end_date error", err)
	}
	if sp.Status != SprintPlanning {
		t.Errorf("default status = %s", sp.Status)
	}
}

func TestTaskPatchDistinguishesNullFromAbsent(t *testing.T) {
	task := Task{Title: "t", EstimateBackend: ptr(3), EstimateQA: ptr(5)}

	var p TaskPatch
	if err := json.Unmarshal([]byte(`{"estimate_backend": null, "title": "renamed"}`), &p); err != nil {
		t.Fatal(err)
	}
	fields := p.Apply(&task)

	if task.EstimateBackend != nil || task.EstimateQA == nil || *task.EstimateQA != 5 || task.Title != "renamed" {
		t.Errorf("task = %+v", task)
	}
	if v, ok := fields["estimate_backend"]; !ok || v != nil {
		t.Errorf("estimate_backend column = %v, %v; want explicit nil", v, ok)
	}
	if _, ok := fields["estimate_qa"]; ok {
		t.Error("absent key produced a column write")
	}
	if len(fields) != 2 {
		t.Errorf("fields = %v", fields)
	}

	fields = TaskPatch{EstimateQA: Some(8)}.Apply(&task)
	if task.EstimateQA == nil || *task.EstimateQA != 8 || fields["estimate_qa"] != 8 {
		t.Errorf("estimate_qa = %v, column = %v; want 8", task.EstimateQA, fields["estimate_qa"])
	}
}

func TestEstimates(t *testing.T) {
	task := Task{EstimateFrontend: ptr(5), EstimateBackend: ptr(3)}
	if task.TotalEstimate() != 8 || task.Estimate(SpecialtyQA) != 0 {
		t.Errorf("total = %d, qa = %d", task.TotalEstimate(), task.Estimate(SpecialtyQA))
	}
	if (Task{}).TotalEstimate() != 0 {
		t.Error("task without estimates should total zero")
	}
}
