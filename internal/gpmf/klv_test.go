package gpmf

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func klvBytes(t *testing.T, tag string, typ byte, structSize, repeat int, payload []byte) []byte {
	t.Helper()
	if len(tag) != 4 {
		t.Fatalf("tag %q must be 4 bytes", tag)
	}
	if len(payload) != structSize*repeat {
		t.Fatalf("payload len=%d want structSize*repeat=%d", len(payload), structSize*repeat)
	}
	b := make([]byte, 0, klvHeaderLen+len(payload)+3)
	b = append(b, tag...)
	b = append(b, typ, byte(structSize))
	b = binary.BigEndian.AppendUint16(b, uint16(repeat))
	b = append(b, payload...)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func int32Payload(vals ...int32) []byte {
	b := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		b = binary.BigEndian.AppendUint32(b, uint32(v))
	}
	return b
}

func TestParse_TypedStream(t *testing.T) {
	inner := klvBytes(t, "SCAL", 'l', 4, 5, int32Payload(10000000, 10000000, 1000, 1000, 100))
	inner = append(inner, klvBytes(t, "GPSU", 'c', 16, 1, []byte("190217093000.000"))...)
	inner = append(inner, klvBytes(t, "GPSF", 'L', 4, 1, int32Payload(3))...)
	inner = append(inner, klvBytes(t, "GPS5", 'l', 20, 2, int32Payload(
		450000000, 90000000, 120000, 1000, 1100,
		450000100, 90000100, 120100, 1010, 1110,
	))...)
	data := klvBytes(t, "DEVC", nestedType, 1, len(inner), inner)

	recs, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("records=%d want 4", len(recs))
	}

	scale, ok := recs[0].Payload.(Scale)
	if !ok {
		t.Fatalf("record 0 payload=%T want Scale", recs[0].Payload)
	}
	if diff := cmp.Diff(Scale{Lat: 10000000, Lon: 10000000, Alt: 1000}, scale); diff != "" {
		t.Fatalf("scale mismatch (-want +got):\n%s", diff)
	}

	gt, ok := recs[1].Payload.(GPSTime)
	if !ok {
		t.Fatalf("record 1 payload=%T want GPSTime", recs[1].Payload)
	}
	want := time.Date(2019, 2, 17, 9, 30, 0, 0, time.UTC)
	if !gt.Time.Equal(want) {
		t.Fatalf("time=%s want %s", gt.Time, want)
	}

	if fix, ok := recs[2].Payload.(FixCode); !ok || fix != 3 {
		t.Fatalf("record 2 payload=%v want FixCode(3)", recs[2].Payload)
	}

	g, ok := recs[3].Payload.(GPS5)
	if !ok {
		t.Fatalf("record 3 payload=%T want GPS5", recs[3].Payload)
	}
	wantSamples := []GPS5Sample{
		{Lat: 450000000, Lon: 90000000, Alt: 120000, Speed2D: 1000, Speed3D: 1100},
		{Lat: 450000100, Lon: 90000100, Alt: 120100, Speed2D: 1010, Speed3D: 1110},
	}
	if diff := cmp.Diff(wantSamples, g.Samples); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_UnknownTagOpaque(t *testing.T) {
	data := klvBytes(t, "ACCL", 's', 2, 3, []byte{0, 1, 0, 2, 0, 3})
	recs, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records=%d want 1", len(recs))
	}
	if recs[0].Tag != "ACCL" || recs[0].Payload != nil {
		t.Fatalf("record=%+v want opaque ACCL", recs[0])
	}
}

func TestParse_TruncatedPayload(t *testing.T) {
	data := klvBytes(t, "GPSF", 'L', 4, 1, int32Payload(3))
	_, err := Parse(data[:len(data)-2])
	if err == nil {
		t.Fatalf("expected error for truncated payload")
	}
}

func TestParse_InvalidTag(t *testing.T) {
	data := klvBytes(t, "GPSF", 'L', 4, 1, int32Payload(3))
	data[0] = 0x01
	_, err := Parse(data)
	if err == nil {
		t.Fatalf("expected error for non-printable tag")
	}
}

func TestParse_TrailingAlignmentZeros(t *testing.T) {
	data := klvBytes(t, "GPSF", 'L', 4, 1, int32Payload(2))
	data = append(data, 0, 0, 0)
	recs, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records=%d want 1", len(recs))
	}
}

func TestParse_MalformedPayloadDegradesToOpaque(t *testing.T) {
	// GPSF with a 2-byte payload cannot carry a fix code.
	data := klvBytes(t, "GPSF", 'S', 2, 1, []byte{0, 3})
	recs, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if recs[0].Payload != nil {
		t.Fatalf("payload=%v want opaque", recs[0].Payload)
	}
}

func TestDecodeGPSTime(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"190217093015.500", true, time.Date(2019, 2, 17, 9, 30, 15, 500_000_000, time.UTC)},
		{"190217093015", true, time.Date(2019, 2, 17, 9, 30, 15, 0, time.UTC)},
		{"not-a-time-stamp", false, time.Time{}},
		{"", false, time.Time{}},
	}
	for _, c := range cases {
		got, ok := decodeGPSTime([]byte(c.in))
		if ok != c.ok {
			t.Fatalf("decodeGPSTime(%q) ok=%v want %v", c.in, ok, c.ok)
		}
		if ok && !got.Equal(c.want) {
			t.Fatalf("decodeGPSTime(%q)=%s want %s", c.in, got, c.want)
		}
	}
}

func TestDecodeSysTime(t *testing.T) {
	u32 := make([]byte, 8)
	binary.BigEndian.PutUint32(u32[0:4], 1550395)
	binary.BigEndian.PutUint32(u32[4:8], 1550395800)
	st, ok := decodeSysTime(u32)
	if !ok {
		t.Fatalf("decodeSysTime(u32) ok=false")
	}
	if st.Seconds != 1550395 || st.Millis != 1550395800 {
		t.Fatalf("sysTime=%+v", st)
	}

	u64 := make([]byte, 16)
	binary.BigEndian.PutUint64(u64[0:8], 1550395800)
	binary.BigEndian.PutUint64(u64[8:16], 1550395800123)
	st, ok = decodeSysTime(u64)
	if !ok {
		t.Fatalf("decodeSysTime(u64) ok=false")
	}
	if st.Seconds != 1550395800 || st.Millis != 1550395800123 {
		t.Fatalf("sysTime=%+v", st)
	}

	if _, ok := decodeSysTime(u32[:7]); ok {
		t.Fatalf("expected ok=false for odd payload length")
	}
}

func TestDecodeScale_Int16(t *testing.T) {
	item := klvItem{fourCC: TagScale, typ: 's', structSize: 2, payload: []byte{0, 10, 0, 20, 0, 30}}
	s, ok := decodeScale(item)
	if !ok {
		t.Fatalf("decodeScale ok=false")
	}
	if s.Lat != 10 || s.Lon != 20 || s.Alt != 30 {
		t.Fatalf("scale=%+v", s)
	}
}
