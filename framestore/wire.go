package framestore

import (
	"encoding/binary"
	"fmt"
	"io"
)

type archiveHeaderV1 struct {
	Magic       [8]byte
	Version     uint16
	Compression uint16
	Width       uint32
	Height      uint32
	StreamID    [16]byte
	Reserved    uint32
}

type recordHeaderV1 struct {
	Index      uint32
	Flags      uint16
	Reserved   uint16
	PayloadLen uint64
}

func readArchiveHeader(r io.Reader) (archiveHeaderV1, error) {
	var buf [archiveHeaderSizeV1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return archiveHeaderV1{}, err
	}
	var h archiveHeaderV1
	copy(h.Magic[:], buf[0:8])
	h.Version = binary.LittleEndian.Uint16(buf[8:10])
	h.Compression = binary.LittleEndian.Uint16(buf[10:12])
	h.Width = binary.LittleEndian.Uint32(buf[12:16])
	h.Height = binary.LittleEndian.Uint32(buf[16:20])
	copy(h.StreamID[:], buf[20:36])
	h.Reserved = binary.LittleEndian.Uint32(buf[36:40])
	return h, nil
}

func writeArchiveHeader(w io.Writer, h archiveHeaderV1) error {
	var buf [archiveHeaderSizeV1]byte
	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	binary.LittleEndian.PutUint16(buf[10:12], h.Compression)
	binary.LittleEndian.PutUint32(buf[12:16], h.Width)
	binary.LittleEndian.PutUint32(buf[16:20], h.Height)
	copy(buf[20:36], h.StreamID[:])
	binary.LittleEndian.PutUint32(buf[36:40], h.Reserved)
	_, err := w.Write(buf[:])
	return err
}

func readRecordHeader(r io.Reader) (recordHeaderV1, error) {
	var buf [recordHeaderSizeV1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return recordHeaderV1{}, err
	}
	var rh recordHeaderV1
	rh.Index = binary.LittleEndian.Uint32(buf[0:4])
	rh.Flags = binary.LittleEndian.Uint16(buf[4:6])
	rh.Reserved = binary.LittleEndian.Uint16(buf[6:8])
	rh.PayloadLen = binary.LittleEndian.Uint64(buf[8:16])
	return rh, nil
}

func writeRecordHeader(w io.Writer, rh recordHeaderV1) error {
	var buf [recordHeaderSizeV1]byte
	binary.LittleEndian.PutUint32(buf[0:4], rh.Index)
	binary.LittleEndian.PutUint16(buf[4:6], rh.Flags)
	binary.LittleEndian.PutUint16(buf[6:8], rh.Reserved)
	binary.LittleEndian.PutUint64(buf[8:16], rh.PayloadLen)
	_, err := w.Write(buf[:])
	return err
}

func (rh recordHeaderV1) compression() Compression {
	return Compression(rh.Flags & recordFlagCompressionMask)
}

func (rh recordHeaderV1) hasUncompressedLen() bool {
	return (rh.Flags & recordFlagHasUncompressedLen) != 0
}

func validateArchiveHeader(h archiveHeaderV1) error {
	if h.Magic != Magic {
		return ErrInvalidMagic
	}
	if h.Version != VersionV1 {
		return ErrUnsupportedVersion
	}
	if h.Reserved != 0 {
		return fmt.Errorf("%w: reserved must be zero", ErrInvalidHeader)
	}
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidHeader, h.Width, h.Height)
	}
	if !Compression(h.Compression).valid() {
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidHeader, h.Compression)
	}
	return nil
}

func validateRecordHeader(rh recordHeaderV1, expectedIndex uint32) error {
	if rh.Reserved != 0 {
		return fmt.Errorf("%w: reserved must be 0", ErrInvalidRecord)
	}
	if rh.Index != expectedIndex {
		return fmt.Errorf("%w: expected frame %d got %d", ErrInvalidRecord, expectedIndex, rh.Index)
	}
	if rh.Flags&^(recordFlagCompressionMask|recordFlagHasUncompressedLen) != 0 {
		return fmt.Errorf("%w: unknown flags 0x%04x", ErrInvalidRecord, rh.Flags)
	}
	comp := rh.compression()
	if !comp.valid() {
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidRecord, comp)
	}
	if comp == CompNone {
		if rh.hasUncompressedLen() {
			return fmt.Errorf("%w: COMP_NONE must not set HAS_UNCOMPRESSED_LEN", ErrInvalidRecord)
		}
	} else {
		if !rh.hasUncompressedLen() {
			return fmt.Errorf("%w: compressed payload must set HAS_UNCOMPRESSED_LEN", ErrInvalidRecord)
		}
	}
	return nil
}
