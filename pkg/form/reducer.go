package form

import "fmt"

// Reduce applies action to state and returns the resulting state. The input is
// never modified. When the action references something that does not exist
// (unknown field, index out of range, removing the final document) Reduce
// returns the original state together with an error wrapping one of the
// package sentinels.
func Reduce(state State, action Action) (State, error) {
	switch act := action.(type) {
	case UpdateField:
		return updateField(state, act)
	case ToggleSameAsResidential:
		return toggleSameAsResidential(state), nil
	case AddNewDocument:
		next := state.Clone()
		next.Documents = appendDocument(state.Documents)
		return next, nil
	case RemoveDocument:
		docs, err := removeDocument(state.Documents, act.Index)
		if err != nil {
			return state, err
		}
		next := state.Clone()
		next.Documents = docs
		return next, nil
	case UpdateDocument:
		docs, err := updateDocument(state.Documents, act.Index, act.Field, act.Value)
		if err != nil {
			return state, err
		}
		next := state.Clone()
		next.Documents = docs
		return next, nil
	case ResetFormFields:
		return InitialState(), nil
	case ResetDocuments:
		next := state.Clone()
		next.Documents = initialDocuments()
		return next, nil
	case nil:
		return state, ErrUnknownAction
	default:
		return state, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}

func updateField(state State, act UpdateField) (State, error) {
	next := state.Clone()
	var ok bool
	switch act.Section {
	case SectionPersonalInfo:
		next.PersonalInfo, ok = state.PersonalInfo.with(act.Field, act.Value)
	case SectionResidentialAddress:
		next.ResidentialAddress, ok = state.ResidentialAddress.with(act.Field, act.Value)
	case SectionPermanentAddress:
		next.PermanentAddress, ok = state.PermanentAddress.with(act.Field, act.Value)
	}
	if !ok {
		return state, fmt.Errorf("%w: %s.%s", ErrInvalidFieldReference, act.Section, act.Field)
	}
	return next, nil
}

// toggleSameAsResidential copies the residential address at the moment the
// flag turns on. Later residential edits are not propagated.
func toggleSameAsResidential(state State) State {
	next := state.Clone()
	next.SameAsResidential = !state.SameAsResidential
	if state.SameAsResidential {
		next.PermanentAddress = Address{}
	} else {
		next.PermanentAddress = state.ResidentialAddress
	}
	return next
}
