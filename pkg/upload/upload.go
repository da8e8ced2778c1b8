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
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/verdantlabs/plantgate/pkg/defaults"
	"github.com/verdantlabs/plantgate/pkg/errors"
)

const (
	// FileField is the inbound multipart field carrying image files.
	FileField = "image"

	// OrganFieldPrefix names the positional organ fields: organ_1..organ_5.
	OrganFieldPrefix = "organ_"

	// DefaultOrgan is used when no organ field accompanies an image.
	DefaultOrgan = "auto"
)

// allowedExtensions is the case-insensitive filename extension allow list.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// allowedContentTypes is the declared MIME type allow list.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// File is one validated upload: payload bytes plus positional metadata.
type File struct {
	Name        string
	ContentType string
	Organ       string
	Data        []byte
}

// Set is an ordered, validated upload set. Order matters: it drives both
// fingerprinting and positional organ association.
type Set struct {
	Files []File
}

// Organs returns the organ tags in file order.
func (s *Set) Organs() []string {
	organs := make([]string, len(s.Files))
	for i, f := range s.Files {
		organs[i] = f.Organ
	}
	return organs
}

// Validator inspects inbound multipart forms and produces validated Sets.
type Validator struct {
	maxImages int
	maxBytes  int64
}

// NewValidator creates a Validator. Non-positive arguments fall back to
// package defaults.
func NewValidator(maxImages int, maxBytes int64) *Validator {
	if maxImages <= 0 {
		maxImages = defaults.MaxImages
	}
	if maxBytes <= 0 {
		maxBytes = defaults.MaxUploadBytes
	}
	return &Validator{maxImages: maxImages, maxBytes: maxBytes}
}

// ParseRequest parses and validates the multipart form of r.
func (v *Validator) ParseRequest(r *http.Request) (*Set, error) {
	if err := r.ParseMultipartForm(v.maxBytes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNoFiles, "no image file found", err)
	}

	form := r.MultipartForm
	if form == nil {
		return nil, errors.New(errors.ErrCodeNoFiles, "no image file found")
	}

	organAt := func(i int) string {
		values := form.Value[fmt.Sprintf("%s%d", OrganFieldPrefix, i+1)]
		if len(values) == 0 || values[0] == "" {
			return DefaultOrgan
		}
		return values[0]
	}
	return v.Validate(form.File[FileField], organAt)
}

// Validate checks the file set and assembles a Set preserving input order.
// organAt returns the organ tag for position i, or "" for default.
func (v *Validator) Validate(files []*multipart.FileHeader, organAt func(int) string) (*Set, error) {
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeNoFiles, "no image file found")
	}
	if len(files) > v.maxImages {
		return nil, errors.NewWithContext(errors.ErrCodeTooManyFiles,
			fmt.Sprintf("you can upload up to %d images only", v.maxImages),
			map[string]any{"count": len(files)})
	}

	set := &Set{Files: make([]File, 0, len(files))}
	for i, fh := range files {
		ext := strings.ToLower(path.Ext(fh.Filename))
		if !allowedExtensions[ext] {
			return nil, errors.NewWithContext(errors.ErrCodeUnsupportedExtension,
				"invalid file extension", map[string]any{"filename": fh.Filename})
		}

		contentType := fh.Header.Get("Content-Type")
		if !allowedContentTypes[contentType] {
			return nil, errors.NewWithContext(errors.ErrCodeUnsupportedContentType,
				"invalid file content type", map[string]any{
					"filename":    fh.Filename,
					"contentType": contentType,
				})
		}

		data, err := readAll(fh)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read upload", err)
		}

		organ := DefaultOrgan
		if organAt != nil {
			if o := organAt(i); o != "" {
				organ = o
			}
		}

		set.Files = append(set.Files, File{
			Name:        SanitizeFilename(fh.Filename),
			ContentType: contentType,
			Organ:       organ,
			Data:        data,
		})
	}
	return set, nil
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// SanitizeFilename reduces a client-supplied filename to a safe base name
// before it is forwarded upstream: path components are stripped and
// characters outside [A-Za-z0-9._-] are replaced with underscores.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimLeft(b.String(), ".")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}
