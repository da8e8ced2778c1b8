package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func set(files ...File) *Set {
	return &Set{Files: files}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := set(
		File{Name: "a.jpg", ContentType: "image/jpeg", Organ: "leaf", Data: []byte("payload-a")},
		File{Name: "b.jpg", ContentType: "image/jpeg", Organ: "flower", Data: []byte("payload-b")},
	)
	b := set(
		File{Name: "a.jpg", ContentType: "image/jpeg", Organ: "leaf", Data: []byte("payload-a")},
		File{Name: "b.jpg", ContentType: "image/jpeg", Organ: "flower", Data: []byte("payload-b")},
	)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprintIgnoresFilename(t *testing.T) {
	// The digest covers payload bytes and organ tags only; a renamed copy of
	// the same image is the same request.
	a := set(File{Name: "a.jpg", Organ: "auto", Data: []byte("same")})
	b := set(File{Name: "renamed.jpg", Organ: "auto", Data: []byte("same")})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprintSensitivity(t *testing.T) {
	base := set(
		File{Organ: "leaf", Data: []byte("payload-a")},
		File{Organ: "flower", Data: []byte("payload-b")},
	)

	tests := []struct {
		name  string
		other *Set
	}{
		{
			name: "single byte difference",
			other: set(
				File{Organ: "leaf", Data: []byte("payload-A")},
				File{Organ: "flower", Data: []byte("payload-b")},
			),
		},
		{
			name: "organ tag difference",
			other: set(
				File{Organ: "leaf", Data: []byte("payload-a")},
				File{Organ: "fruit", Data: []byte("payload-b")},
			),
		},
		{
			name: "order difference",
			other: set(
				File{Organ: "flower", Data: []byte("payload-b")},
				File{Organ: "leaf", Data: []byte("payload-a")},
			),
		},
		{
			name:  "entry count difference",
			other: set(File{Organ: "leaf", Data: []byte("payload-a")}),
		},
		{
			// "payload-al"+"eaf" concatenates identically to "payload-a"+"leaf";
			// length prefixing must still tell them apart.
			name: "boundary shift between payload and organ",
			other: set(
				File{Organ: "eaf", Data: []byte("payload-al")},
				File{Organ: "flower", Data: []byte("payload-b")},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base.Fingerprint(), tt.other.Fingerprint())
		})
	}
}

func TestFingerprintFormat(t *testing.T) {
	fp := set(File{Organ: "auto", Data: []byte("x")}).Fingerprint()
	// hex-encoded SHA-256
	assert.Len(t, fp.String(), 64)
}
