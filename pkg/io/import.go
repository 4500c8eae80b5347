package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/quiz"
)

// ReadJSON decodes and validates a layout document from r.
// Documents of another format or a newer version are rejected with
// ErrCodeUnsupported; malformed ones with ErrCodeInvalidInput.
func ReadJSON(r io.Reader) (*Layout, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "decode layout")
	}

	if doc.Format != Format {
		return nil, qerrors.New(qerrors.ErrCodeUnsupported, "not a layout document (format %q)", doc.Format)
	}
	if doc.Version < 1 || doc.Version > Version {
		return nil, qerrors.New(qerrors.ErrCodeUnsupported, "layout version %d (supported: %d)", doc.Version, Version)
	}
	if doc.Title == "" {
		doc.Title = quiz.DefaultTitle
	}
	if err := qerrors.ValidateTitle(doc.Title); err != nil {
		return nil, err
	}
	if err := quiz.ValidateComponents(doc.Components); err != nil {
		return nil, err
	}
	return &Layout{Title: doc.Title, Components: quiz.CloneComponents(doc.Components)}, nil
}

// ImportJSON reads a layout file at path.
func ImportJSON(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
