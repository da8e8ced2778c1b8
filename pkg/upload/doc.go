// Package upload validates inbound multipart image sets and computes the
// deterministic fingerprint that keys the result cache.
//
// The inbound convention matches the public API: image files arrive under the
// "image" field, and the organ tag for the i-th image (1-based) arrives under
// "organ_i", defaulting to "auto". Organ tag values are not validated here;
// the identification provider is authoritative on their semantics.
package upload
