package domain

import "time"

// DocumentStatus is the externally observable lifecycle state of a document.
// It is the only ingestion state other subsystems may key off.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusUploading means the document record exists but its bytes are
	// still being delivered by the upload flow.
	StatusUploading DocumentStatus = "UPLOADING"

	// StatusProcessing means the ingestion pipeline owns the document.
	StatusProcessing DocumentStatus = "PROCESSING"

	// StatusReady means ingestion completed and the document's chunks are
	// visible to retrieval. This status is the publish barrier.
	StatusReady DocumentStatus = "READY"

	// StatusError means ingestion failed terminally. The document can be
	// reprocessed but is invisible to retrieval.
	StatusError DocumentStatus = "ERROR"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusUploading, StatusProcessing, StatusReady, StatusError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once ingestion has reached an end state.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusReady || s == StatusError
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// DocumentType categorises a project document. The category drives the
// authority weight applied during result scoring.
type DocumentType string

// Known document categories.
const (
	TypeSpec       DocumentType = "SPEC"
	TypeDrawing    DocumentType = "DRAWING"
	TypeAddendum   DocumentType = "ADDENDUM"
	TypeChange     DocumentType = "CHANGE"
	TypeContract   DocumentType = "CONTRACT"
	TypeFinancial  DocumentType = "FINANCIAL"
	TypeSchedule   DocumentType = "SCHEDULE"
	TypeCompliance DocumentType = "COMPLIANCE"
	TypeRFI        DocumentType = "RFI"
	TypePortfolio  DocumentType = "PORTFOLIO"
	TypeMeeting    DocumentType = "MEETING"
	TypeCloseout   DocumentType = "CLOSEOUT"
)

// IsValid returns true if the type is one of the known categories.
func (t DocumentType) IsValid() bool {
	switch t {
	case TypeSpec, TypeDrawing, TypeAddendum, TypeChange, TypeContract,
		TypeFinancial, TypeSchedule, TypeCompliance, TypeRFI,
		TypePortfolio, TypeMeeting, TypeCloseout:
		return true
	default:
		return false
	}
}

// Weight returns the scoring multiplier for this category. Amendments to
// the contract documents (addenda, change orders) outrank the documents
// they amend; administrative records rank below the neutral 1.0.
// Unknown categories are neutral.
func (t DocumentType) Weight() float64 {
	switch t {
	case TypeAddendum:
		return 1.4
	case TypeChange:
		return 1.35
	case TypeSpec:
		return 1.3
	case TypeDrawing, TypeFinancial:
		return 1.25
	case TypeContract:
		return 1.2
	case TypeSchedule, TypeCompliance:
		return 1.15
	case TypeRFI:
		return 1.1
	case TypePortfolio:
		return 1.0
	case TypeMeeting:
		return 0.9
	case TypeCloseout:
		return 0.8
	default:
		return 1.0
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Description returns a human-readable description of the category.
func (t DocumentType) Description() string {
	switch t {
	case TypeSpec:
		return "Specification"
	case TypeDrawing:
		return "Drawing"
	case TypeAddendum:
		return "Addendum"
	case TypeChange:
		return "Change Order"
	case TypeContract:
		return "Contract"
	case TypeFinancial:
		return "Financial"
	case TypeSchedule:
		return "Schedule"
	case TypeCompliance:
		return "Compliance"
	case TypeRFI:
		return "RFI"
	case TypePortfolio:
		return "Portfolio"
	case TypeMeeting:
		return "Meeting Minutes"
	case TypeCloseout:
		return "Closeout"
	default:
		return "Unknown"
	}
}

// AllDocumentTypes returns the known categories in weight order.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		TypeAddendum,
		TypeChange,
		TypeSpec,
		TypeDrawing,
		TypeFinancial,
		TypeContract,
		TypeSchedule,
		TypeCompliance,
		TypeRFI,
		TypePortfolio,
		TypeMeeting,
		TypeCloseout,
	}
}

// Document represents a project document moving through the ingestion
// lifecycle. Its extracted text lives in chunks, never on the document.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// ProjectID is the owning project.
	ProjectID string

	// Title is the human-readable title.
	Title string

	// Type is the declared document category.
	Type DocumentType

	// Status is the lifecycle state. Only READY documents are
	// visible to retrieval.
	Status DocumentStatus

	// StorageKey locates the raw bytes in blob storage.
	StorageKey string

	// MIMEType is the declared content type (e.g. "application/pdf").
	MIMEType string

	// SizeBytes is the raw byte size.
	SizeBytes int64

	// PageCount is set when ingestion finalises.
	PageCount int

	// ErrorDetail holds the failure summary when Status is ERROR.
	ErrorDetail string

	// CreatedAt is when the document record was created.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}
