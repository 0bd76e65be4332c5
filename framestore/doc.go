// Package framestore holds frame sequences for framecodec.
//
// Dir keeps one image file per frame in a directory, named with a
// zero-padded index (frame_0000.png, frame_0001.png, ...). It is the form
// ffmpeg reads and writes with the image2 format, see Dir.Pattern.
//
// Archive keeps a whole sequence in one file:
//   - A 40-byte little-endian header: magic, version, default compression,
//     frame width and height, a 16-byte stream UUID and a reserved word
//   - One record per frame: a 16-byte header (index, flags, payload length)
//     followed by the 8-bit grey raster, stored as is or compressed with
//     ZIP, Zstandard, LZ4 or Brotli behind an 8-byte uncompressed length
//
// Records must appear with contiguous indexes starting at 0, and every
// decompressed raster must be exactly width x height bytes.
package framestore
