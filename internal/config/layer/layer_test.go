package layer

import "testing"

func TestNew_StandardNameAndPriority(t *testing.T) {
	tests := []struct {
		source   Source
		name     string
		priority int
		readOnly bool
	}{
		{SourceBuiltin, "defaults", PriorityBuiltin, true},
		{SourceUser, "user", PriorityUser, false},
		{SourceWorkspace, "workspace", PriorityWorkspace, false},
		{SourceEnv, "env", PriorityEnv, false},
		{SourceSession, "session", PrioritySession, false},
	}

	for _, tt := range tests {
		l := New(tt.source)
		if l.Name != tt.name {
			t.Errorf("New(%v).Name = %q, want %q", tt.source, l.Name, tt.name)
		}
		if l.Priority != tt.priority {
			t.Errorf("New(%v).Priority = %d, want %d", tt.source, l.Priority, tt.priority)
		}
		if l.ReadOnly != tt.readOnly {
			t.Errorf("New(%v).ReadOnly = %v, want %v", tt.source, l.ReadOnly, tt.readOnly)
		}
		if l.Data == nil {
			t.Errorf("New(%v).Data is nil", tt.source)
		}
	}
}

func TestSource_Unknown(t *testing.T) {
	s := Source(42)
	if s.String() != "unknown" {
		t.Errorf("String() = %q, want unknown", s.String())
	}
	if s.Priority() != PriorityBuiltin {
		t.Errorf("Priority() = %d, want %d", s.Priority(), PriorityBuiltin)
	}
}

func TestLayer_CloneIsDeep(t *testing.T) {
	orig := NewWithData(SourceUser, map[string]any{
		"textEditing": map[string]any{
			"font": map[string]any{"name": "Menlo"},
		},
		"list": []any{map[string]any{"a": 1}},
	})

	clone := orig.Clone()
	SetByPath(clone.Data, "textEditing.font.name", "Monaco")
	clone.Data["list"].([]any)[0].(map[string]any)["a"] = 2

	if v, _ := GetByPath(orig.Data, "textEditing.font.name"); v != "Menlo" {
		t.Errorf("original font name = %v, want Menlo", v)
	}
	if v := orig.Data["list"].([]any)[0].(map[string]any)["a"]; v != 1 {
		t.Errorf("original list entry = %v, want 1", v)
	}
}
