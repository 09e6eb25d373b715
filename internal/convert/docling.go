// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"

	"github.com/greenguard/docflow/internal/container"
)

// DefaultDoclingImage is the converter image used when the configuration
// does not name one.
const DefaultDoclingImage = "docling:latest"

// Docling converts PDFs by streaming them through a docling container.
// The container reads the PDF on stdin and writes Markdown to stdout,
// preserving heading levels and table structure the embedded-text
// backend cannot recover.
type Docling struct {
	runtime container.Runtime
	image   string
}

// NewDocling returns a converter that runs the given image. An empty
// image selects DefaultDoclingImage.
func NewDocling(rt container.Runtime, image string) *Docling {
	if image == "" {
		image = DefaultDoclingImage
	}
	return &Docling{runtime: rt, image: image}
}

// Convert runs the container over the PDF and returns its Markdown output.
func (d *Docling) Convert(pdfPath string) (string, error) {
	if err := d.runtime.ImageExists(d.image); err != nil {
		return "", err
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := d.runtime.Run(d.image, f, &out); err != nil {
		return "", fmt.Errorf("converting %s: %w", pdfPath, err)
	}
	return out.String(), nil
}
