package metrics

import "testing"

// TestMultiSink ensures events are forwarded to all sinks.

type recordSink struct {
	count int
}

func (r *recordSink) RecordProfileDecision(ProfileDecision) error {
	r.count++
	return nil
}

func (r *recordSink) RecordCompositeQuery(CompositeQuery) error {
	r.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordProfileDecision(ProfileDecision{}); err != nil {
		t.Fatalf("record decision: %v", err)
	}
	if err := m.RecordCompositeQuery(CompositeQuery{}); err != nil {
		t.Fatalf("record query: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
}

// TestMultiSink_SkipsUnsupported checks optional recorders are skipped.
func TestMultiSink_SkipsUnsupported(t *testing.T) {
	m := NewMultiSink(NopSink{}, &recordSink{})
	if err := m.RecordStoredProfiles(3); err != nil {
		t.Fatalf("stored profiles: %v", err)
	}
	if err := m.RecordClear(ClearEvent{Removed: 1}); err != nil {
		t.Fatalf("clear: %v", err)
	}
}
