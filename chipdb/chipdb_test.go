package chipdb

import "testing"

func TestResolveBuiltin(t *testing.T) {
	c, err := Resolve("nrf52840", "")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if c.SpeedHz != 4_000_000 {
		t.Errorf("SpeedHz = %d, want 4000000", c.SpeedHz)
	}
	if c.Name != "nrf52840" {
		t.Errorf("Name = %q, want nrf52840", c.Name)
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("does-not-exist", "")
	if err == nil {
		t.Fatal("expected error for unknown chip")
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Names() not sorted: %v", names)
		}
	}
}
