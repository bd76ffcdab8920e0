package domain

// UploadedDocument is the raw upload for a single request. It is never
// persisted.
type UploadedDocument struct {
	Filename string
	Content  []byte
}

// RenderedPage is the first page of a document rendered to PNG.
type RenderedPage struct {
	PNG    []byte
	Width  int
	Height int
	DPI    float64
}

// Record keys, in response order.
const (
	FieldName            = "name"
	FieldDateOfBirth     = "date_of_birth"
	FieldDateOfBirthYear = "date_of_birth_year"
	FieldGender          = "gender"
	FieldIDNumber        = "id_number"
	FieldAddress         = "address"
	FieldParentName      = "parent_name"
	FieldConfidence      = "confidence"
)

// RecordFields lists every key of ExtractedRecord.
var RecordFields = []string{
	FieldName,
	FieldDateOfBirth,
	FieldDateOfBirthYear,
	FieldGender,
	FieldIDNumber,
	FieldAddress,
	FieldParentName,
	FieldConfidence,
}

// ExtractedRecord is the structured result returned to the caller. Fields
// the model omitted are nil and serialise as JSON null. A record is not
// modified after the parser builds it.
type ExtractedRecord struct {
	Name            *string `json:"name"`
	DateOfBirth     *string `json:"date_of_birth"`
	DateOfBirthYear *string `json:"date_of_birth_year"`
	Gender          *string `json:"gender"`
	IDNumber        *string `json:"id_number"`
	Address         *string `json:"address"`
	ParentName      *string `json:"parent_name"`
	Confidence      *int    `json:"confidence"`
}
