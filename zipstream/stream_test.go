package zipstream

import "testing"

func TestStreamTracksAggregates(t *testing.T) {
	s := New()
	s.AddOpenDir("PATIENT")
	s.AddWriteInstance("001.dcm", "instance-1", 1000)
	s.AddWriteInstance("002.dcm", "instance-2", 2000)
	s.AddCloseDir()
	s.Seal()

	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	if s.InstanceCount() != 2 {
		t.Errorf("InstanceCount() = %d, want 2", s.InstanceCount())
	}
	if s.UncompressedSize() != 3000 {
		t.Errorf("UncompressedSize() = %d, want 3000", s.UncompressedSize())
	}

	cmd, err := s.At(1)
	if err != nil {
		t.Fatalf("At(1): %v", err)
	}
	if cmd.Kind != WriteInstance || cmd.InstanceID != "instance-1" {
		t.Errorf("At(1) = %+v, want WriteInstance instance-1", cmd)
	}
}

func TestAddAfterSealPanics(t *testing.T) {
	s := New()
	s.Seal()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic adding to a sealed stream")
		}
	}()
	s.AddOpenDir("X")
}

func TestAtOutOfRange(t *testing.T) {
	s := New()
	s.AddOpenDir("X")
	s.Seal()

	if _, err := s.At(5); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
	if _, err := s.At(-1); err == nil {
		t.Fatal("expected error for negative index")
	}
}

func TestRequiresZip64SizeBoundary(t *testing.T) {
	const sizeThreshold = 2 * 1024 * 1024 * 1024
	const instanceThreshold = 65535

	s := New()
	s.AddWriteInstance("a.dcm", "instance-a", sizeThreshold-zip64SizeMargin-1)
	s.Seal()
	if s.RequiresZip64(sizeThreshold, instanceThreshold) {
		t.Error("one byte below the margin boundary should not require zip64")
	}

	s2 := New()
	s2.AddWriteInstance("a.dcm", "instance-a", sizeThreshold-zip64SizeMargin)
	s2.Seal()
	if !s2.RequiresZip64(sizeThreshold, instanceThreshold) {
		t.Error("exactly at the margin boundary should require zip64")
	}
}

func TestRequiresZip64InstanceCountBoundary(t *testing.T) {
	const sizeThreshold = 2 * 1024 * 1024 * 1024
	const instanceThreshold = 65535

	s := New()
	for i := 0; uint32(i) < instanceThreshold-zip64InstanceMargin-1; i++ {
		s.AddWriteInstance("x.dcm", "instance-x", 1)
	}
	s.Seal()
	if s.RequiresZip64(sizeThreshold, instanceThreshold) {
		t.Error("one instance below the margin boundary should not require zip64")
	}

	s2 := New()
	for i := 0; uint32(i) < instanceThreshold-zip64InstanceMargin; i++ {
		s2.AddWriteInstance("x.dcm", "instance-x", 1)
	}
	s2.Seal()
	if !s2.RequiresZip64(sizeThreshold, instanceThreshold) {
		t.Error("exactly at the instance margin boundary should require zip64")
	}
}
