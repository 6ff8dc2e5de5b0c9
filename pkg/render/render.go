// Package render names generated artifacts and declares the rendering
// collaborator. The actual HTML→PDF engine runs outside this repository;
// it consumes the serialized document and produces the printable file.
package render

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"
)

// Renderer turns a serialized document into a printable artifact at outPath.
type Renderer interface {
	Render(ctx context.Context, document io.Reader, outPath string) error
}

const artifactPrefix = "carta-vini"

var nonWord = regexp.MustCompile(`[^\w-]+`)

// ArtifactName builds the canonical artifact filename:
// {ISO-date}_carta-vini_{sanitized-venue}.{ext}. Every run of characters
// outside [A-Za-z0-9_-] in the venue name collapses to a single underscore.
func ArtifactName(date time.Time, venueName, ext string) string {
	sanitized := nonWord.ReplaceAllString(venueName, "_")
	return fmt.Sprintf("%s_%s_%s.%s", date.Format("2006-01-02"), artifactPrefix, sanitized, ext)
}
