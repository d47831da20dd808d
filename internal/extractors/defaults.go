package extractors

import (
	"github.com/planroomhq/planroom-cli/internal/extractors/docx"
	"github.com/planroomhq/planroom-cli/internal/extractors/html"
	"github.com/planroomhq/planroom-cli/internal/extractors/image"
	"github.com/planroomhq/planroom-cli/internal/extractors/markdown"
	"github.com/planroomhq/planroom-cli/internal/extractors/pdf"
	"github.com/planroomhq/planroom-cli/internal/extractors/plaintext"
)

// NewDefaultRegistry creates a registry with all built-in extractors
// registered. Call this during application initialisation.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(image.New())
	return r
}
