package models

import "strings"

// ApplyDefaults fills empty enum fields and trims free text.
func (t *Task) ApplyDefaults() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if t.TaskType == "" {
		t.TaskType = TaskTypeFeature
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = TaskBacklog
	}
}

func (s *Squad) ApplyDefaults() {
	s.Name = strings.TrimSpace(s.Name)
	if s.Status == "" {
		s.Status = StatusActive
	}
}

func (m *TeamMember) ApplyDefaults() {
	m.Name = strings.TrimSpace(m.Name)
	if m.Status == "" {
		m.Status = StatusActive
	}
}

func (s *Sprint) ApplyDefaults() {
	s.Name = strings.TrimSpace(s.Name)
	if s.Status == "" {
		s.Status = SprintPlanning
	}
}

func (r *Release) ApplyDefaults() {
	r.Version = strings.TrimSpace(r.Version)
	if r.Status == "" {
		r.Status = ReleasePlanned
	}
}

func (d *Document) ApplyDefaults() {
	d.Title = strings.TrimSpace(d.Title)
	if d.Category == "" {
		d.Category = "General"
	}
}
