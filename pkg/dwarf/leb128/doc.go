// Package leb128 provides encoders and decoders for The Little Endian Base 128 format.
// The Little Endian Base 128 format is defined in the DWARF v4 standard,
// section 7.6, page 161 and following.
//
// Every fixed width integer type is supported: the native unsigned and
// signed types through the generic EncodeUnsigned, EncodeSigned,
// DecodeUnsigned and DecodeSigned functions, and 128 bit integers through
// EncodeUint128, EncodeInt128, DecodeUint128 and DecodeInt128.
//
// Encoders always produce the shortest encoding of a value. Decoders accept
// longer encodings as long as they do not use more groups than the target
// type could ever need and the bits that fall outside of the target type
// do not change the value. Any other input fails with ErrOverflow, the
// decoders never truncate.
package leb128
