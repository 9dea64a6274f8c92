package resource

import "testing"

type fakeCatalog struct {
	levels  map[string]Level
	parents map[string]string
}

func (c *fakeCatalog) LookupLevel(id string) (Level, error) {
	l, ok := c.levels[id]
	if !ok {
		return 0, errNotFound(id)
	}
	return l, nil
}

func (c *fakeCatalog) LookupParent(id string) (string, error) {
	p, ok := c.parents[id]
	if !ok {
		return "", errNotFound(id)
	}
	return p, nil
}

type notFoundError string

func (e notFoundError) Error() string { return "not found: " + string(e) }

func errNotFound(id string) error { return notFoundError(id) }

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		levels: map[string]Level{
			"patient-1": Patient,
			"study-1":   Study,
			"series-1":  Series,
			"instance-1": Instance,
		},
		parents: map[string]string{
			"study-1":    "patient-1",
			"series-1":   "study-1",
			"instance-1": "series-1",
		},
	}
}

func TestNewPathResolvesFullAncestry(t *testing.T) {
	cat := newFakeCatalog()

	p, err := NewPath(cat, "instance-1")
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}
	if p.Level() != Instance {
		t.Errorf("Level() = %v, want Instance", p.Level())
	}

	want := map[Level]string{
		Patient:  "patient-1",
		Study:    "study-1",
		Series:   "series-1",
		Instance: "instance-1",
	}
	for level, id := range want {
		if got := p.Identifier(level); got != id {
			t.Errorf("Identifier(%v) = %q, want %q", level, got, id)
		}
	}
}

func TestNewPathAtCoarserLevel(t *testing.T) {
	cat := newFakeCatalog()

	p, err := NewPath(cat, "series-1")
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}
	if p.Level() != Series {
		t.Errorf("Level() = %v, want Series", p.Level())
	}
	if p.Identifier(Patient) != "patient-1" {
		t.Errorf("Identifier(Patient) = %q, want patient-1", p.Identifier(Patient))
	}
}

func TestNewPathUnknownResource(t *testing.T) {
	cat := newFakeCatalog()

	if _, err := NewPath(cat, "ghost"); err == nil {
		t.Fatal("expected error for unknown resource, got nil")
	}
}

func TestIdentifierPanicsAboveResolvedLevel(t *testing.T) {
	cat := newFakeCatalog()
	p, err := NewPath(cat, "study-1")
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic requesting Series from a Study-level path")
		}
	}()
	_ = p.Identifier(Series)
}
