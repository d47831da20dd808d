// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/planroomhq/planroom-cli/internal/adapters/driving/tui/styles"
	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// chunksPerGroup caps how many chunk previews render under each document.
const chunksPerGroup = 2

// ResultList displays grouped search results in a navigable list.
// Navigation moves between result groups; each group shows the owning
// document and its best chunk previews.
type ResultList struct {
	groups   []domain.ResultGroup
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		groups:   nil,
		selected: 0,
		styles:   s,
		width:    80,
		height:   10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			r.MoveUp()
		case tea.KeyDown:
			r.MoveDown()
		default:
			// Handle other keys
		}
		switch msg.String() {
		case "k":
			r.MoveUp()
		case "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.groups) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.groups)*4+2)

	// Header
	header := r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.groups)))
	lines = append(lines, header, "")

	// Each group takes up to 1 title line plus chunksPerGroup preview lines
	visibleCount := (r.height - 4) / (chunksPerGroup + 1)
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.groups) {
		end = len(r.groups)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderGroup(i, &r.groups[i]))
	}

	return strings.Join(lines, "\n")
}

// renderGroup formats one document group with its chunk previews.
func (r *ResultList) renderGroup(index int, group *domain.ResultGroup) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := group.Document.Title
	if title == "" {
		title = group.Document.ID
	}

	maxTitleLen := r.width - 24
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	meta := fmt.Sprintf("%s  %.2f", group.Document.Type, group.BestScore)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitleLen, title, meta))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitleLen, title)) +
			r.styles.Muted.Render(meta)
	}

	chunkLines := make([]string, 0, chunksPerGroup)
	for i, scored := range group.Chunks {
		if i >= chunksPerGroup {
			break
		}
		chunkLines = append(chunkLines, r.renderChunk(&scored))
	}

	return titleLine + "\n" + strings.Join(chunkLines, "\n")
}

// renderChunk formats one chunk preview line with score and location.
func (r *ResultList) renderChunk(scored *domain.ScoredChunk) string {
	preview := scored.Chunk.Content
	if idx := strings.IndexByte(preview, '\n'); idx >= 0 {
		preview = preview[:idx]
	}
	preview = strings.TrimSpace(preview)

	prefix := fmt.Sprintf("    %.2f %s ", scored.FinalScore, chunkLocation(&scored.Chunk))

	maxPreviewLen := r.width - len(prefix) - 12
	if maxPreviewLen < 20 {
		maxPreviewLen = 20
	}
	if len(preview) > maxPreviewLen {
		preview = preview[:maxPreviewLen-3] + "..."
	}

	line := r.styles.Muted.Render(prefix) + r.styles.Normal.Render(preview)
	if scored.IsMarginal {
		line += " " + r.styles.Marginal.Render("[marginal]")
	}
	return line
}

// chunkLocation formats where a chunk sits in its document.
func chunkLocation(chunk *domain.Chunk) string {
	switch {
	case chunk.PageNumber != nil && chunk.SectionRef != "":
		return fmt.Sprintf("(p.%d, %s)", *chunk.PageNumber, chunk.SectionRef)
	case chunk.PageNumber != nil:
		return fmt.Sprintf("(p.%d)", *chunk.PageNumber)
	case chunk.SectionRef != "":
		return fmt.Sprintf("(%s)", chunk.SectionRef)
	default:
		return fmt.Sprintf("(chunk %d)", chunk.Index)
	}
}

// SetGroups updates the result list.
func (r *ResultList) SetGroups(groups []domain.ResultGroup) {
	r.groups = groups
	r.selected = 0
}

// Groups returns the current result groups.
func (r *ResultList) Groups() []domain.ResultGroup {
	return r.groups
}

// Selected returns the index of the selected group.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.groups) {
		r.selected = index
	}
}

// SelectedGroup returns the currently selected group, or nil if none.
func (r *ResultList) SelectedGroup() *domain.ResultGroup {
	if len(r.groups) == 0 || r.selected < 0 || r.selected >= len(r.groups) {
		return nil
	}
	return &r.groups[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.groups)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of result groups.
func (r *ResultList) Count() int {
	return len(r.groups)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.groups) == 0
}
