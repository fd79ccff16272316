// Package msgs defines the measurement records carried by link packets
// and decodes them from payload bytes.
package msgs

// Payloads are little-endian and fields are read one by one at fixed
// offsets. Records implement proto.Message through struct tags so they
// can be published without generated code.
