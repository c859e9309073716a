package workflow

// FieldType identifies the native representation of an exposed field.
type FieldType string

// Supported field types
const (
	TypeInteger         FieldType = "integer"
	TypeFloat           FieldType = "float"
	TypeString          FieldType = "string"
	TypeBoolean         FieldType = "boolean"
	TypeImage           FieldType = "image"
	TypeImageCollection FieldType = "image-collection"
	TypeCollection      FieldType = "collection"
	TypeBoard           FieldType = "board"
	TypeModel           FieldType = "model"
	TypeObject          FieldType = "object"
)

// settingsTypes maps the host's form settings type strings onto field types.
var settingsTypes = map[string]FieldType{
	"integer-field-config":          TypeInteger,
	"float-field-config":            TypeFloat,
	"string-field-config":           TypeString,
	"boolean-field-config":          TypeBoolean,
	"image-field-config":            TypeImage,
	"image-collection-field-config": TypeImageCollection,
	"collection-field-config":       TypeCollection,
	"board-field-config":            TypeBoard,
	"model-field-config":            TypeModel,
	"object-field-config":           TypeObject,
}

// ExposedField describes one user-exposed input parsed from the workflow
// form. The field sequence keeps form declaration order, which is what
// disambiguates duplicate names and labels.
type ExposedField struct {
	// NodeID is the graph node owning the field.
	NodeID string

	// FieldName is the input key inside the node (e.g. "value", "prompt").
	FieldName string

	// Type is the declared or inferred field type.
	Type FieldType

	// ElementID is the originating form element id.
	ElementID string

	// Label is the user-facing label, empty when the form declares none.
	Label string
}
