// Package metadata encodes and decodes the side-channel custom sections that
// compiled objects carry for the linker.
//
// Each section body is a run of blocks, each prefixed with a little-endian
// u32 length. Assembly sections hold one assembly text per block. Import and
// embed sections hold one host-snippet record per block:
//
//	[u16 len][module] [u16 len][name] [u8 count]
//	count × ([u16 len][module] [u16 len][name])
//	[snippet bytes to end of block]
//
// Any length that runs past its container is reported as a version skew
// between the producer and this linker.
package metadata
