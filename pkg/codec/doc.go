// Package codec provides record serialization and deserialization for save data.
//
// A record is the exact byte sequence written for one named save. It frames
// the payload together with the flags needed to read it back: whether the
// content is encrypted (and with which key) and whether it is compressed.
//
// # Record Format
//
// Current layout:
//
//	[Encrypted(1)][Key(16), only when encrypted][Compressed(1)][Content]
//
// Legacy layout (read only, predates compression support):
//
//	[Encrypted(1)][Key(16), only when encrypted][Content]
//
// Fields:
//   - Encrypted: one flag byte, 0x00 for false and 0x01 for true. Any
//     non-zero byte is read as true.
//   - Key: the 16 byte symmetric key used for this record only. It is
//     generated fresh on every encode and stored inline, so encryption
//     obfuscates the save rather than protecting it.
//   - Compressed: one flag byte, same encoding.
//   - Content: everything after the header.
//
// Compression is applied to the plaintext before encryption; decoding
// decrypts first and then decompresses.
//
// # Layout Detection
//
// No version tag exists. Decode tries the current layout and falls back to
// the legacy layout when the current attempt fails for any reason: a header
// shorter than its flags require, a decrypt failure, or a decompress failure.
// When both fail the record is reported as undecodable.
//
// A byte sequence can be valid under both layouts with different payloads.
// It is always read as the current layout. Adding a discriminator would be
// a format migration and is deliberately not done here.
//
// # Usage
//
//	c := codec.NewRecordCodec(nil, nil) // AES + Deflate
//
//	data, err := c.Encode([]byte("hello"), true, false)
//	if err != nil {
//	    return err
//	}
//
//	payload, ok := c.Decode(data)
//	if !ok {
//	    // neither layout applied
//	}
//
// # Thread Safety
//
// RecordCodec instances are safe for concurrent use as long as the providers
// they wrap are.
package codec
