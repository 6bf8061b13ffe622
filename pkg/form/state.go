package form

// Section names the top-level groupings of a submission. The string values
// double as wire names for the packager and dotted paths in error trees.
type Section string

const (
	SectionPersonalInfo       Section = "personalInfo"
	SectionResidentialAddress Section = "residentialAddress"
	SectionPermanentAddress   Section = "permanentAddress"
	SectionDocuments          Section = "documents"
)

// Field keys shared by actions, validation paths, and the transport contract.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldDOB       = "dob"

	FieldStreet1 = "street1"
	FieldStreet2 = "street2"

	FieldFileName = "fileName"
	FieldFileType = "fileType"
	FieldFile     = "file"

	FieldSameAsResidential = "sameAsResidential"
)

// FileType enumerates the accepted attachment kinds. The zero value means the
// applicant has not picked one yet.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypePDF   FileType = "pdf"
)

// FileTypes lists the accepted attachment kinds in display order.
func FileTypes() []FileType {
	return []FileType{FileTypeImage, FileTypePDF}
}

// Valid reports whether t is one of the accepted kinds.
func (t FileType) Valid() bool {
	return t == FileTypeImage || t == FileTypePDF
}

// PersonalInfo captures the applicant fields as entered. DOB is an ISO
// YYYY-MM-DD string; it is parsed only at validation time.
type PersonalInfo struct {
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	Email     string `json:"email" yaml:"email"`
	DOB       string `json:"dob" yaml:"dob"`
}

// Address is a two-line postal address.
type Address struct {
	Street1 string `json:"street1" yaml:"street1"`
	Street2 string `json:"street2" yaml:"street2"`
}

// IsZero reports whether both lines are empty.
func (a Address) IsZero() bool {
	return a.Street1 == "" && a.Street2 == ""
}

// Document is one row of the documents section.
type Document struct {
	FileName string      `json:"fileName"`
	FileType FileType    `json:"fileType"`
	File     *Attachment `json:"-"`
}

// State is the aggregate root of an editing session.
type State struct {
	PersonalInfo       PersonalInfo `json:"personalInfo"`
	ResidentialAddress Address      `json:"residentialAddress"`
	SameAsResidential  bool         `json:"sameAsResidential"`
	PermanentAddress   Address      `json:"permanentAddress"`
	Documents          []Document   `json:"documents"`
}

// InitialState returns the canonical empty submission: every text field blank,
// mirroring off, and a single placeholder document.
func InitialState() State {
	return State{
		Documents: initialDocuments(),
	}
}

func initialDocuments() []Document {
	return []Document{{}}
}

// Clone returns a copy that shares no mutable storage with s. Attachments are
// immutable and therefore shared.
func (s State) Clone() State {
	out := s
	if s.Documents != nil {
		out.Documents = append([]Document(nil), s.Documents...)
	}
	return out
}

// IsLastDocument reports whether index addresses the final document row, the
// row that offers "add another" instead of "remove".
func (s State) IsLastDocument(index int) bool {
	return len(s.Documents) > 0 && index == len(s.Documents)-1
}

// Sections lists the editable sections in form order.
func Sections() []Section {
	return []Section{
		SectionPersonalInfo,
		SectionResidentialAddress,
		SectionPermanentAddress,
		SectionDocuments,
	}
}

// SectionFields returns the field keys recognised for section, in form order.
// Unknown sections return nil.
func SectionFields(section Section) []string {
	switch section {
	case SectionPersonalInfo:
		return []string{FieldFirstName, FieldLastName, FieldEmail, FieldDOB}
	case SectionResidentialAddress, SectionPermanentAddress:
		return []string{FieldStreet1, FieldStreet2}
	case SectionDocuments:
		return []string{FieldFileName, FieldFileType, FieldFile}
	default:
		return nil
	}
}

// Value returns the text value stored at section/field. The boolean is false
// when the reference does not name a text field.
func (s State) Value(section Section, field string) (string, bool) {
	switch section {
	case SectionPersonalInfo:
		return s.PersonalInfo.get(field)
	case SectionResidentialAddress:
		return s.ResidentialAddress.get(field)
	case SectionPermanentAddress:
		return s.PermanentAddress.get(field)
	default:
		return "", false
	}
}

func (p PersonalInfo) get(field string) (string, bool) {
	switch field {
	case FieldFirstName:
		return p.FirstName, true
	case FieldLastName:
		return p.LastName, true
	case FieldEmail:
		return p.Email, true
	case FieldDOB:
		return p.DOB, true
	default:
		return "", false
	}
}

func (p PersonalInfo) with(field, value string) (PersonalInfo, bool) {
	switch field {
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldEmail:
		p.Email = value
	case FieldDOB:
		p.DOB = value
	default:
		return p, false
	}
	return p, true
}

func (a Address) get(field string) (string, bool) {
	switch field {
	case FieldStreet1:
		return a.Street1, true
	case FieldStreet2:
		return a.Street2, true
	default:
		return "", false
	}
}

func (a Address) with(field, value string) (Address, bool) {
	switch field {
	case FieldStreet1:
		a.Street1 = value
	case FieldStreet2:
		a.Street2 = value
	default:
		return a, false
	}
	return a, true
}
