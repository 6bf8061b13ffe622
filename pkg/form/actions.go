package form

// ActionType is the wire name of a transition, kept for logging and for
// callers that bridge untyped event sources.
type ActionType string

const (
	ActionUpdateField             ActionType = "UPDATE_FIELD"
	ActionToggleSameAsResidential ActionType = "TOGGLE_SAME_AS_RESIDENTIAL"
	ActionAddNewDocument          ActionType = "ADD_NEW_DOCUMENT"
	ActionRemoveDocument          ActionType = "REMOVE_DOCUMENT"
	ActionUpdateDocument          ActionType = "UPDATE_DOCUMENT"
	ActionResetFormFields         ActionType = "RESET_FORM_FIELDS"
	ActionResetDocuments          ActionType = "RESET_DOCUMENTS"
)

// Action is the closed set of transitions Reduce understands. The unexported
// method keeps implementations inside this package.
type Action interface {
	Type() ActionType
	action()
}

// UpdateField replaces one text field inside a non-document section.
type UpdateField struct {
	Section Section
	Field   string
	Value   string
}

// ToggleSameAsResidential flips the mirroring flag. Turning it on copies the
// residential address once; turning it off blanks the permanent address.
type ToggleSameAsResidential struct{}

// AddNewDocument appends an empty document row.
type AddNewDocument struct{}

// RemoveDocument drops the document at Index.
type RemoveDocument struct {
	Index int
}

// UpdateDocument replaces one field of the document at Index. Value must be a
// string (or FileType) for fileName/fileType and a *Attachment (or nil) for
// file.
type UpdateDocument struct {
	Index int
	Field string
	Value any
}

// ResetFormFields restores the whole state to InitialState.
type ResetFormFields struct{}

// ResetDocuments restores only the documents section.
type ResetDocuments struct{}

func (UpdateField) Type() ActionType             { return ActionUpdateField }
func (ToggleSameAsResidential) Type() ActionType { return ActionToggleSameAsResidential }
func (AddNewDocument) Type() ActionType          { return ActionAddNewDocument }
func (RemoveDocument) Type() ActionType          { return ActionRemoveDocument }
func (UpdateDocument) Type() ActionType          { return ActionUpdateDocument }
func (ResetFormFields) Type() ActionType         { return ActionResetFormFields }
func (ResetDocuments) Type() ActionType          { return ActionResetDocuments }

func (UpdateField) action()             {}
func (ToggleSameAsResidential) action() {}
func (AddNewDocument) action()          {}
func (RemoveDocument) action()          {}
func (UpdateDocument) action()          {}
func (ResetFormFields) action()         {}
func (ResetDocuments) action()          {}
