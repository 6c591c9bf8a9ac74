package image

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/flashkit/rsflash/pkg"
)

func buildDescriptorBytes(flashSize, bufferSize, direction uint32) []byte {
	buf := make([]byte, DescriptorSize)
	binary.LittleEndian.PutUint32(buf[0:4], flashSize)
	binary.LittleEndian.PutUint32(buf[4:8], bufferSize)
	binary.LittleEndian.PutUint32(buf[8:12], direction)
	return buf
}

func TestParseDescriptorWrongSize(t *testing.T) {
	_, err := ParseDescriptor(make([]byte, 8))
	if err == nil {
		t.Fatal("expected error for 8-byte section")
	}
	var ie *pkg.ImageError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *pkg.ImageError, got %T", err)
	}
	if got := err.Error(); got != "image: parse .rs-flash section: flash table is wrong size" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestParseDescriptorInvalidDirection(t *testing.T) {
	data := buildDescriptorBytes(1024, 256, 0)
	_, err := ParseDescriptor(data)
	if err == nil {
		t.Fatal("expected error for direction 0")
	}
	want := "image: decode direction: invalid flash table direction 0x00000000"
	if got := err.Error(); got != want {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestParseDescriptorDirectionThree(t *testing.T) {
	data := buildDescriptorBytes(1024, 256, 3)
	_, err := ParseDescriptor(data)
	if err == nil {
		t.Fatal("expected error for direction 3")
	}
	want := "image: decode direction: invalid flash table direction 0x00000003"
	if got := err.Error(); got != want {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestParseDescriptorNotMultiple(t *testing.T) {
	data := buildDescriptorBytes(1000, 256, uint32(Load))
	_, err := ParseDescriptor(data)
	if err == nil {
		t.Fatal("expected error for non-multiple flash_size")
	}
}

func TestParseDescriptorZeroBufferSize(t *testing.T) {
	data := buildDescriptorBytes(1024, 0, uint32(Load))
	_, err := ParseDescriptor(data)
	if err == nil {
		t.Fatal("expected error for zero buffer_size")
	}
}

func TestParseDescriptorExample5(t *testing.T) {
	// From spec §8 end-to-end scenario 5.
	data := []byte{0x00, 0x04, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00}
	desc, err := ParseDescriptor(data)
	if err != nil {
		t.Fatalf("ParseDescriptor() error: %v", err)
	}
	if desc.FlashSize != 1024 {
		t.Errorf("FlashSize = %d, want 1024", desc.FlashSize)
	}
	if desc.BufferSize != 256 {
		t.Errorf("BufferSize = %d, want 256", desc.BufferSize)
	}
	if desc.Direction != Load {
		t.Errorf("Direction = %v, want Load", desc.Direction)
	}
	if desc.ChunkCount() != 4 {
		t.Errorf("ChunkCount() = %d, want 4", desc.ChunkCount())
	}
}

func TestParseDescriptorExample6(t *testing.T) {
	data := buildDescriptorBytes(1024, 256, 3)
	_, err := ParseDescriptor(data)
	if err == nil {
		t.Fatal("expected decode failure for direction word 0x00000003")
	}
}

func TestMarshalToRoundTrip(t *testing.T) {
	d := &Descriptor{FlashSize: 32, BufferSize: 16, Direction: Dump}
	buf := make([]byte, DescriptorSize)
	n := d.MarshalTo(buf)
	if n != DescriptorSize {
		t.Fatalf("MarshalTo() = %d, want %d", n, DescriptorSize)
	}

	parsed, err := ParseDescriptor(buf)
	if err != nil {
		t.Fatalf("ParseDescriptor() error: %v", err)
	}
	if *parsed != *d {
		t.Errorf("round trip mismatch: got %+v, want %+v", parsed, d)
	}
}

func TestMarshalToBufferTooSmall(t *testing.T) {
	d := &Descriptor{FlashSize: 32, BufferSize: 16, Direction: Dump}
	if n := d.MarshalTo(make([]byte, 4)); n != 0 {
		t.Errorf("MarshalTo() with short buf = %d, want 0", n)
	}
}

func TestChunkCountSingleChunk(t *testing.T) {
	d := &Descriptor{FlashSize: 16, BufferSize: 16, Direction: Load}
	if d.ChunkCount() != 1 {
		t.Errorf("ChunkCount() = %d, want 1", d.ChunkCount())
	}
}
