package image

import (
	"errors"
	"testing"

	"github.com/flashkit/rsflash/pkg"
)

func TestDecodeDirectionValid(t *testing.T) {
	tests := []struct {
		value uint32
		want  Direction
	}{
		{1, Dump},
		{2, Load},
	}
	for _, tt := range tests {
		got, err := DecodeDirection(tt.value)
		if err != nil {
			t.Fatalf("DecodeDirection(%d) unexpected error: %v", tt.value, err)
		}
		if got != tt.want {
			t.Errorf("DecodeDirection(%d) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestDecodeDirectionInvalid(t *testing.T) {
	_, err := DecodeDirection(3)
	if err == nil {
		t.Fatal("expected error for direction value 3")
	}
	var ie *pkg.ImageError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *pkg.ImageError, got %T", err)
	}
	want := "image: decode direction: invalid flash table direction 0x00000003"
	if got := err.Error(); got != want {
		t.Errorf("error message = %q, want %q", got, want)
	}
}

func TestDecodeDirectionZero(t *testing.T) {
	_, err := DecodeDirection(0)
	if err == nil {
		t.Fatal("expected error for direction value 0")
	}
	want := "image: decode direction: invalid flash table direction 0x00000000"
	if got := err.Error(); got != want {
		t.Errorf("error message = %q, want %q", got, want)
	}
}

func TestDirectionEncodeRoundTrip(t *testing.T) {
	for _, d := range []Direction{Dump, Load} {
		got, err := DecodeDirection(d.Encode())
		if err != nil {
			t.Fatalf("round trip failed for %v: %v", d, err)
		}
		if got != d {
			t.Errorf("round trip %v -> %d -> %v", d, d.Encode(), got)
		}
	}
}

func TestDirectionString(t *testing.T) {
	if Dump.String() != "dump" {
		t.Errorf("Dump.String() = %q", Dump.String())
	}
	if Load.String() != "load" {
		t.Errorf("Load.String() = %q", Load.String())
	}
	if got := Direction(3).String(); got != "invalid(0x00000003)" {
		t.Errorf("Direction(3).String() = %q", got)
	}
}
