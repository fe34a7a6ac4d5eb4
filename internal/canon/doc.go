// Package canon provides the canonical value tree and content hashing used
// by every analysis layer.
//
// Every hashed or emitted payload is built from the sealed Value types in
// this package and serialized with MarshalCanonical. That function is the
// single boundary through which data may enter a hash: algorithms are free
// to use native maps and sets internally, but nothing unordered crosses
// into a payload.
//
// Key constraints:
//   - NO float types. Fractional statistics are emitted as fixed-point
//     decimal strings so hashes are identical across platforms.
//   - NO null and no unordered containers in hashed payloads.
//   - Object keys sort by UTF-16 code units (RFC 8785); strings are NFC
//     normalized; HTML characters are not escaped.
//   - Layer hashes are SHA-256 with a per-layer domain prefix and a null
//     separator (HashPayload).
package canon
