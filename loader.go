// loader.go - the .COM and .EXE/MZ executable loaders.
//
// .EXE relocation semantics (the 16-bit load-segment-relative fixup with
// wraparound addition) are confirmed against
// original_source/dustbox/src/format/exe.rs rather than guessed, since
// spec.md leaves the exact fixup arithmetic unspecified. The teacher has
// no executable-format loader at all (cpu_x86_runner.go just pokes a
// flat byte array directly), so this is new code grounded on the
// original implementation and general MZ-format documentation rather
// than any teacher analogue.

package dos86

import (
	"encoding/binary"
	"errors"
)

var (
	ErrBadSignature = errors.New("dos86: not a recognized executable (bad MZ/COM signature)")
	ErrTruncated    = errors.New("dos86: executable file is truncated")
)

// ComPSPSize is the 256-byte Program Segment Prefix every DOS program
// sits behind in memory, real or synthetic.
const ComPSPSize = 0x100

// LoadCOM loads a flat .COM image at codeSeg:0x0100 and returns the
// entry segment:offset (codeSeg, 0x100); it does not set registers -
// Machine.LoadCOM sets CS=DS=ES=SS=codeSeg and SP=0xFFFE.
func LoadCOM(mmu *MMU, image []byte, codeSeg uint16) (seg, ip uint16, err error) {
	if len(image) > 0x10000-ComPSPSize {
		return 0, 0, ErrTruncated
	}
	mmu.WriteBlock(codeSeg, ComPSPSize, image)
	return codeSeg, ComPSPSize, nil
}

// exeHeader is the 28-byte-plus MZ header fields this loader reads; the
// field layout matches every MS-DOS EXE loader since 1983.
type exeHeader struct {
	signature       [2]byte
	lastPageBytes   uint16
	pagesInFile     uint16
	numReloc        uint16
	headerParas     uint16
	minAllocParas   uint16
	maxAllocParas   uint16
	initSS          uint16
	initSP          uint16
	checksum        uint16
	initIP          uint16
	initCS          uint16
	relocTableOff   uint16
	overlayNumber   uint16
}

func parseExeHeader(data []byte) (exeHeader, error) {
	var h exeHeader
	if len(data) < 28 {
		return h, ErrTruncated
	}
	copy(h.signature[:], data[0:2])
	if h.signature[0] != 'M' || h.signature[1] != 'Z' {
		return h, ErrBadSignature
	}
	h.lastPageBytes = binary.LittleEndian.Uint16(data[2:4])
	h.pagesInFile = binary.LittleEndian.Uint16(data[4:6])
	h.numReloc = binary.LittleEndian.Uint16(data[6:8])
	h.headerParas = binary.LittleEndian.Uint16(data[8:10])
	h.minAllocParas = binary.LittleEndian.Uint16(data[10:12])
	h.maxAllocParas = binary.LittleEndian.Uint16(data[12:14])
	h.initSS = binary.LittleEndian.Uint16(data[14:16])
	h.initSP = binary.LittleEndian.Uint16(data[16:18])
	h.checksum = binary.LittleEndian.Uint16(data[18:20])
	h.initIP = binary.LittleEndian.Uint16(data[20:22])
	h.initCS = binary.LittleEndian.Uint16(data[22:24])
	h.relocTableOff = binary.LittleEndian.Uint16(data[24:26])
	h.overlayNumber = binary.LittleEndian.Uint16(data[26:28])
	return h, nil
}

// imageSize is the actual byte length of the executable image described
// by the header: pagesInFile full 512-byte pages, with the last page
// only lastPageBytes long if nonzero.
func (h exeHeader) imageSize() int {
	size := int(h.pagesInFile) * 512
	if h.lastPageBytes != 0 {
		size -= 512 - int(h.lastPageBytes)
	}
	return size
}

func (h exeHeader) headerSize() int { return int(h.headerParas) * 16 }

// LoadExecutable loads an MZ/.EXE image so that the program's own
// load-segment-relative addresses resolve correctly: loadSeg is the
// paragraph the image body starts at (the caller's chosen analogue of
// real DOS's "first free paragraph after the PSP"). Returns the entry
// CS:IP and the initial SS:SP per the header, with every relocation
// entry already applied.
func LoadExecutable(mmu *MMU, data []byte, loadSeg uint16) (cs, ip, ss, sp uint16, err error) {
	h, err := parseExeHeader(data)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	hdrSize := h.headerSize()
	imgSize := h.imageSize()
	if len(data) < hdrSize || len(data) < imgSize {
		return 0, 0, 0, 0, ErrTruncated
	}

	body := data[hdrSize:imgSize]
	mmu.WriteBlock(loadSeg, 0, body)

	relocOff := int(h.relocTableOff)
	for i := 0; i < int(h.numReloc); i++ {
		entryOff := relocOff + i*4
		if entryOff+4 > len(data) {
			break
		}
		relOffset := binary.LittleEndian.Uint16(data[entryOff : entryOff+2])
		relSegment := binary.LittleEndian.Uint16(data[entryOff+2 : entryOff+4])

		patchSeg := loadSeg + relSegment
		orig := mmu.ReadWord(patchSeg, relOffset)
		mmu.WriteWord(patchSeg, relOffset, orig+loadSeg)
	}

	cs = loadSeg + h.initCS
	ip = h.initIP
	ss = loadSeg + h.initSS
	sp = h.initSP
	return cs, ip, ss, sp, nil
}

// IsEXE reports whether data begins with the MZ signature, letting a
// loader auto-detect format the way command.com's own loader does.
func IsEXE(data []byte) bool {
	return len(data) >= 2 && data[0] == 'M' && data[1] == 'Z'
}
