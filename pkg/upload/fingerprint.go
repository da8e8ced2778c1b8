// Copyright (c) 2026, Verdant Labs.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package upload

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Fingerprint is the deterministic digest of a Set, used as the cache key.
// Identical content in identical order with identical organ tags yields the
// same value; any difference yields a different value.
type Fingerprint string

// Fingerprint computes the order-sensitive SHA-256 digest of the set's
// payload bytes and organ tags. Each field is length-prefixed so adjacent
// fields cannot alias across entry boundaries.
func (s *Set) Fingerprint() Fingerprint {
	h := sha256.New()

	var n [8]byte
	writeField := func(data []byte) {
		binary.BigEndian.PutUint64(n[:], uint64(len(data)))
		h.Write(n[:])
		h.Write(data)
	}

	binary.BigEndian.PutUint64(n[:], uint64(len(s.Files)))
	h.Write(n[:])

	for _, f := range s.Files {
		writeField(f.Data)
		writeField([]byte(f.Organ))
	}

	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// String implements fmt.Stringer.
func (f Fingerprint) String() string { return string(f) }
