package form

import "fmt"

// The helpers below back the documents section. Each returns a fresh slice so
// snapshots handed out earlier never observe the change.

func appendDocument(docs []Document) []Document {
	out := make([]Document, len(docs), len(docs)+1)
	copy(out, docs)
	return append(out, Document{})
}

func removeDocument(docs []Document, index int) ([]Document, error) {
	if index < 0 || index >= len(docs) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(docs))
	}
	if len(docs) == 1 {
		return nil, ErrLastDocument
	}
	out := make([]Document, 0, len(docs)-1)
	out = append(out, docs[:index]...)
	return append(out, docs[index+1:]...), nil
}

func updateDocument(docs []Document, index int, field string, value any) ([]Document, error) {
	if index < 0 || index >= len(docs) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(docs))
	}
	doc, err := docs[index].with(field, value)
	if err != nil {
		return nil, err
	}
	out := append([]Document(nil), docs...)
	out[index] = doc
	return out, nil
}

func (d Document) with(field string, value any) (Document, error) {
	switch field {
	case FieldFileName:
		s, ok := value.(string)
		if !ok {
			return d, fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, field, value)
		}
		d.FileName = s
	case FieldFileType:
		switch v := value.(type) {
		case string:
			d.FileType = FileType(v)
		case FileType:
			d.FileType = v
		default:
			return d, fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, field, value)
		}
	case FieldFile:
		switch v := value.(type) {
		case nil:
			d.File = nil
		case *Attachment:
			d.File = v
		default:
			return d, fmt.Errorf("%w: %s expects *form.Attachment, got %T", ErrInvalidValue, field, value)
		}
	default:
		return d, fmt.Errorf("%w: %s.%s", ErrInvalidFieldReference, SectionDocuments, field)
	}
	return d, nil
}
