package gpmf

// Package gpmf decodes the GoPro Metadata Format (GPMF) KLV stream found in
// the camera's gpmd track.
//
// It is intentionally small and geared toward track extraction:
// - Walk the nested KLV containers and emit leaf records in stream order
// - Decode the payloads the telemetry builder consumes (SCAL, GPSU, GPSF,
//   GPS5, SYST, GPRI)
// - Carry everything else as opaque records
