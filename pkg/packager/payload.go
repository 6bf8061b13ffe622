package packager

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-docsubmit/pkg/form"
)

// DocumentsField is the repeated part name carrying every binary attachment.
const DocumentsField = "documents"

// Part is one named entry of the multipart payload. File is non-nil for
// binary parts, in which case Value holds the file name sent in the part
// headers.
type Part struct {
	Name  string
	Value string
	File  *form.Attachment
}

// IsFile reports whether the part carries binary content.
func (p Part) IsFile() bool {
	return p.File != nil
}

// Payload is the ordered list of parts derived from an accepted snapshot.
type Payload struct {
	Parts []Part
}

// TextParts returns the non-binary parts in order.
func (p Payload) TextParts() []Part {
	var out []Part
	for _, part := range p.Parts {
		if !part.IsFile() {
			out = append(out, part)
		}
	}
	return out
}

// FileParts returns the binary parts in order.
func (p Payload) FileParts() []Part {
	var out []Part
	for _, part := range p.Parts {
		if part.IsFile() {
			out = append(out, part)
		}
	}
	return out
}

// Values returns the text values stored under name, in order.
func (p Payload) Values(name string) []string {
	var out []string
	for _, part := range p.Parts {
		if part.Name == name && !part.IsFile() {
			out = append(out, part.Value)
		}
	}
	return out
}

// Value returns the first text value under name.
func (p Payload) Value(name string) (string, bool) {
	values := p.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Names lists every part name in order, repeats included.
func (p Payload) Names() []string {
	out := make([]string, len(p.Parts))
	for i, part := range p.Parts {
		out[i] = part.Name
	}
	return out
}

// Package flattens state into transport parts. Address fields use the
// "section[field]" convention, document metadata is indexed by the position of
// its binary part ("documents[i][fileName]"), and documents without a file are
// skipped. Package never fails and does not modify state.
func Package(state form.State) Payload {
	parts := make([]Part, 0, 9+3*len(state.Documents))

	info := state.PersonalInfo
	parts = append(parts,
		text(form.FieldFirstName, info.FirstName),
		text(form.FieldLastName, info.LastName),
		text(form.FieldEmail, info.Email),
		text(form.FieldDOB, info.DOB),
	)
	parts = appendAddress(parts, form.SectionResidentialAddress, state.ResidentialAddress)
	parts = append(parts, text(form.FieldSameAsResidential, strconv.FormatBool(state.SameAsResidential)))
	parts = appendAddress(parts, form.SectionPermanentAddress, state.PermanentAddress)

	index := 0
	for _, doc := range state.Documents {
		if doc.File == nil {
			continue
		}
		parts = append(parts,
			Part{Name: DocumentsField, Value: fileName(doc), File: doc.File},
			text(DocumentFieldName(index, form.FieldFileName), doc.FileName),
			text(DocumentFieldName(index, form.FieldFileType), string(doc.FileType)),
		)
		index++
	}

	return Payload{Parts: parts}
}

// AddressFieldName returns the flattened name for an address field, for
// example "residentialAddress[street1]".
func AddressFieldName(section form.Section, field string) string {
	return fmt.Sprintf("%s[%s]", section, field)
}

// DocumentFieldName returns the indexed metadata name, for example
// "documents[0][fileType]".
func DocumentFieldName(index int, field string) string {
	return fmt.Sprintf("%s[%d][%s]", DocumentsField, index, field)
}

func appendAddress(parts []Part, section form.Section, addr form.Address) []Part {
	return append(parts,
		text(AddressFieldName(section, form.FieldStreet1), addr.Street1),
		text(AddressFieldName(section, form.FieldStreet2), addr.Street2),
	)
}

func text(name, value string) Part {
	return Part{Name: name, Value: value}
}

func fileName(doc form.Document) string {
	if name := doc.File.Name(); name != "" {
		return name
	}
	if doc.FileName != "" {
		return doc.FileName
	}
	return "blob"
}
