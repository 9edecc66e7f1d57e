package service

import (
	"context"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

// Field describes one editable attribute of a catalog record.
type Field struct {
	ID     string
	Label  string
	Prompt string
	Column string
	// Options, when set, are offered as buttons and are the only accepted answers.
	Options []string
}

// FieldEditor knows how to edit the records of one catalog.
type FieldEditor interface {
	Catalog() models.Catalog
	Title() string
	Fields() []Field
	// SelectsField reports whether the operator picks a single field before editing.
	SelectsField() bool
	// FullRow reports whether Commit needs every column, unchanged ones included.
	FullRow() bool
	Flow(fieldID string) ([]string, error)
	Seed(ctx context.Context, recordID *int64) (map[string]string, error)
	Check(fieldID, value string) error
	Commit(ctx context.Context, recordID *int64, values map[string]string) error
}

// EditorRegistry resolves editors by catalog.
type EditorRegistry struct {
	editors map[models.Catalog]FieldEditor
}

// NewEditorRegistry indexes editors by their catalog. Later editors replace earlier ones.
func NewEditorRegistry(editors ...FieldEditor) *EditorRegistry {
	reg := &EditorRegistry{editors: make(map[models.Catalog]FieldEditor, len(editors))}
	for _, editor := range editors {
		if editor == nil {
			continue
		}
		reg.editors[editor.Catalog()] = editor
	}
	return reg
}

// Get returns the editor for catalog.
func (r *EditorRegistry) Get(catalog models.Catalog) (FieldEditor, bool) {
	if r == nil {
		return nil, false
	}
	editor, ok := r.editors[catalog]
	return editor, ok
}

func findField(fields []Field, id string) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func fieldIDs(fields []Field) []string {
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		ids = append(ids, f.ID)
	}
	return ids
}
