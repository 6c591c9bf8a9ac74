package image

import (
	"debug/elf"
	"fmt"

	"github.com/flashkit/rsflash/pkg"
)

// Fixed symbol names the target image must export (spec §6).
const (
	SymbolRTT     = "_SEGGER_RTT"
	SymbolBuffer  = "_RS_FLASH_BUFFER"
	SymbolControl = "_RS_FLASH_CONTROL"
)

// Segment describes one PT_LOAD program header to be copied into target
// RAM verbatim.
type Segment struct {
	Addr uint64
	Data []byte
}

// Image is a parsed target ELF: its descriptor, its three fixed symbol
// addresses, its loadable segments, and its entry point.
type Image struct {
	file *elf.File

	Descriptor *Descriptor
	RTTAddr    uint64
	BufferAddr uint64
	ControlAddr uint64
	Entry      uint64
	Segments   []Segment
}

// Load opens path, parses it as an ELF file, and resolves everything the
// host needs to program and run the target agent: the .rs-flash
// descriptor, the three fixed symbols, the loadable segments, and the
// entry point. Any missing piece is a fatal *pkg.ImageError.
func Load(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, &pkg.IoError{Op: "read ELF", Path: path, Err: err}
	}
	defer f.Close()

	desc, err := descriptorFrom(f)
	if err != nil {
		return nil, err
	}

	rttAddr, _, err := symbolAddr(f, SymbolRTT)
	if err != nil {
		return nil, err
	}
	bufAddr, _, err := symbolAddr(f, SymbolBuffer)
	if err != nil {
		return nil, err
	}
	ctrlAddr, _, err := symbolAddr(f, SymbolControl)
	if err != nil {
		return nil, err
	}
	if bufAddr == ctrlAddr {
		return nil, &pkg.ImageError{
			Op:  "validate symbols",
			Err: fmt.Errorf("%s and %s must not share an address", SymbolBuffer, SymbolControl),
		}
	}

	segments, err := loadableSegments(f)
	if err != nil {
		return nil, err
	}

	entry := f.Entry
	if !coveredByLoadable(segments, entry) {
		return nil, &pkg.ImageError{
			Op:  "validate entry point",
			Err: fmt.Errorf("entry point 0x%08x is not covered by a loadable segment", entry),
		}
	}

	return &Image{
		file:        f,
		Descriptor:  desc,
		RTTAddr:     rttAddr,
		BufferAddr:  bufAddr,
		ControlAddr: ctrlAddr,
		Entry:       entry,
		Segments:    segments,
	}, nil
}

func descriptorFrom(f *elf.File) (*Descriptor, error) {
	sec := f.Section(SectionName)
	if sec == nil {
		return nil, &pkg.ImageError{
			Op:  "locate .rs-flash section",
			Err: fmt.Errorf("section %s not present", SectionName),
		}
	}
	data, err := sec.Data()
	if err != nil {
		return nil, &pkg.ImageError{
			Op:  "read .rs-flash section",
			Err: err,
		}
	}
	return ParseDescriptor(data)
}

func symbolAddr(f *elf.File, name string) (addr, size uint64, err error) {
	syms, serr := f.Symbols()
	if serr != nil {
		syms = nil
	}
	if found, ok := findSymbol(syms, name); ok {
		return found.Value, found.Size, nil
	}

	dynSyms, derr := f.DynamicSymbols()
	if derr == nil {
		if found, ok := findSymbol(dynSyms, name); ok {
			return found.Value, found.Size, nil
		}
	}

	return 0, 0, &pkg.ImageError{
		Op:  "resolve symbol",
		Err: fmt.Errorf("symbol %s not found in image", name),
	}
}

func findSymbol(syms []elf.Symbol, name string) (elf.Symbol, bool) {
	for _, s := range syms {
		if s.Name == name {
			return s, true
		}
	}
	return elf.Symbol{}, false
}

func loadableSegments(f *elf.File) ([]Segment, error) {
	var segments []Segment
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if prog.Filesz > 0 {
			if _, err := prog.ReadAt(data, 0); err != nil {
				return nil, &pkg.ImageError{
					Op:  "read loadable segment",
					Err: err,
				}
			}
		}
		if prog.Memsz > prog.Filesz {
			data = append(data, make([]byte, prog.Memsz-prog.Filesz)...)
		}
		segments = append(segments, Segment{Addr: prog.Vaddr, Data: data})
	}
	if len(segments) == 0 {
		return nil, &pkg.ImageError{
			Op:  "enumerate loadable segments",
			Err: fmt.Errorf("no PT_LOAD segments found"),
		}
	}
	return segments, nil
}

func coveredByLoadable(segments []Segment, addr uint64) bool {
	for _, seg := range segments {
		end := seg.Addr + uint64(len(seg.Data))
		if addr >= seg.Addr && addr < end {
			return true
		}
	}
	return false
}
