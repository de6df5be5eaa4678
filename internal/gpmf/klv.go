package gpmf

import (
	"encoding/binary"
	"fmt"
)

// KLV stream format: each item is an 8-byte header followed by an aligned
// payload.
//
//   bytes 0..3  fourCC tag (printable ASCII)
//   byte  4     type code (0x00 marks a nested container)
//   byte  5     struct size (bytes per element)
//   bytes 6..7  repeat count, big-endian
//
// The payload is structSize*repeat bytes, padded with zeros up to the next
// 4-byte boundary. Containers nest arbitrarily; leaf records are emitted in
// depth-first stream order, which matches capture order.

const (
	klvHeaderLen  = 8
	nestedType    = 0x00
	maxKLVPayload = 16 * 1024 * 1024
)

type klvItem struct {
	fourCC     string
	typ        byte
	structSize int
	repeat     int
	payload    []byte
}

// Parse walks a raw GPMF dump and returns its leaf records in stream order.
// Items whose payload this package does not understand come back as opaque
// records; a structurally broken stream (truncated header or payload)
// returns an error.
func Parse(data []byte) ([]Record, error) {
	recs := make([]Record, 0, 256)
	if err := walk(data, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func walk(data []byte, out *[]Record) error {
	off := 0
	for off < len(data) {
		// Alignment padding at the end of a container.
		if len(data)-off < klvHeaderLen && allZero(data[off:]) {
			return nil
		}

		item, next, err := readItem(data, off)
		if err != nil {
			return err
		}

		if item.typ == nestedType {
			if err := walk(item.payload, out); err != nil {
				return err
			}
		} else {
			*out = append(*out, decodeRecord(item))
		}
		off = next
	}
	return nil
}

func readItem(data []byte, off int) (klvItem, int, error) {
	if len(data)-off < klvHeaderLen {
		return klvItem{}, 0, fmt.Errorf("gpmf: truncated header at offset %d", off)
	}
	h := data[off : off+klvHeaderLen]

	fourCC := string(h[:4])
	if !printableFourCC(fourCC) {
		return klvItem{}, 0, fmt.Errorf("gpmf: invalid tag %q at offset %d", fourCC, off)
	}

	structSize := int(h[5])
	repeat := int(binary.BigEndian.Uint16(h[6:8]))
	payloadLen := structSize * repeat
	if payloadLen > maxKLVPayload {
		return klvItem{}, 0, fmt.Errorf("gpmf: oversized payload (%d bytes) for %s", payloadLen, fourCC)
	}
	padded := (payloadLen + 3) &^ 3

	start := off + klvHeaderLen
	if start+payloadLen > len(data) {
		return klvItem{}, 0, fmt.Errorf("gpmf: truncated payload for %s at offset %d", fourCC, off)
	}
	end := start + padded
	if end > len(data) {
		end = len(data)
	}

	return klvItem{
		fourCC:     fourCC,
		typ:        h[4],
		structSize: structSize,
		repeat:     repeat,
		payload:    data[start : start+payloadLen],
	}, end, nil
}

func printableFourCC(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
