package gesture

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/stewi1014/glmandel/viewport"
)

type Field int

const (
	FieldReal Field = iota
	FieldImaginary
	FieldZoom
	numFields
)

func (f Field) String() string {
	switch f {
	case FieldReal:
		return "real"
	case FieldImaginary:
		return "imaginary"
	case FieldZoom:
		return "zoom"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Fields is the text of the coordinate inputs. A field that is being edited
// is left alone by Sync so the view does not overwrite what the user types.
type Fields struct {
	values  [numFields]string
	editing [numFields]bool
}

func (f *Fields) Value(field Field) string { return f.values[field] }

func (f *Fields) Set(field Field, value string) { f.values[field] = value }

func (f *Fields) Editing(field Field) bool { return f.editing[field] }

func (f *Fields) SetEditing(field Field, editing bool) { f.editing[field] = editing }

// Sync writes the view's center and zoom into every field not being edited
// and reports whether any text changed.
func (f *Fields) Sync(view *viewport.State) bool {
	c := view.Center()
	values := [numFields]string{
		FieldReal:      FormatCoordinate(c[0]),
		FieldImaginary: FormatCoordinate(c[1]),
		FieldZoom:      FormatZoom(view.ZoomLevel()),
	}

	changed := false
	for i := range values {
		if f.editing[i] || f.values[i] == values[i] {
			continue
		}
		f.values[i] = values[i]
		changed = true
	}
	return changed
}

// Commit applies the current field text through t.
func (f *Fields) Commit(t *Translator) error {
	return t.Commit(f.values[FieldReal], f.values[FieldImaginary], f.values[FieldZoom])
}

// Check reports whether Commit would accept the text, without moving
// anything.
func (f *Fields) Check() error {
	_, _, _, err := ParseLocation(f.values[FieldReal], f.values[FieldImaginary], f.values[FieldZoom])
	return err
}

// CommitEvent returns the field text as an event for transports.
func (f *Fields) CommitEvent() *CommitEvent {
	return &CommitEvent{
		Real:      f.values[FieldReal],
		Imaginary: f.values[FieldImaginary],
		Zoom:      f.values[FieldZoom],
	}
}

// Summary is a one line description of the location, for copying.
func (f *Fields) Summary() string {
	return fmt.Sprintf("real %v imaginary %v zoom %v", f.values[FieldReal], f.values[FieldImaginary], f.values[FieldZoom])
}

// Clipboard copies Summary to the system clipboard.
func (f *Fields) Clipboard() error {
	if clipboard.Unsupported {
		return errors.New("no clipboard available")
	}
	return clipboard.WriteAll(f.Summary())
}

func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 10, 64)
}

func FormatZoom(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
