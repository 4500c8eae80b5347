package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/quizgrid/pkg/quiz"
)

// Format identifies layout documents.
const (
	Format  = "quizgrid/layout"
	Version = 1
)

type document struct {
	Format     string           `json:"format"`
	Version    int              `json:"version"`
	Title      string           `json:"title"`
	Components []quiz.Component `json:"components"`
}

// Layout is a decoded layout document.
type Layout struct {
	Title      string
	Components []quiz.Component
}

// WriteJSON encodes q as a layout document.
func WriteJSON(q *quiz.Quiz, w io.Writer) error {
	doc := document{
		Format:     Format,
		Version:    Version,
		Title:      q.Title,
		Components: quiz.CloneComponents(q.Components),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes q to a layout file at path.
func ExportJSON(q *quiz.Quiz, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(q, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
