package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"paper_summaries_go_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paperYAML = `title: A Study
authors:
  - Ada Lovelace
  - Alan Turing
publicationDate: 2024-01-15
abstract: We study things.
category: ML
summary:
  problem: Things are unclear.
  method: Careful study.
  dataset: Synthetic.
  keyResults: Things are clearer.
  takeaway: Study things.
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPaperFromYAML(t *testing.T) {
	paper, err := loadPaper(writeTemp(t, "paper.yaml", paperYAML))
	require.NoError(t, err)

	assert.Equal(t, "A Study", paper.Title)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, paper.Authors)
	assert.Equal(t, models.NewDate(2024, time.January, 15), paper.PublicationDate)
	assert.Equal(t, models.CategoryML, paper.Category)
	assert.Equal(t, "Things are clearer.", paper.Summary.KeyResults)
}

func TestLoadPaperFromJSON(t *testing.T) {
	path := writeTemp(t, "paper.json", `{"title":"A Study","publicationDate":"2024-01-15","category":"CV"}`)
	paper, err := loadPaper(path)
	require.NoError(t, err)

	assert.Equal(t, "A Study", paper.Title)
	assert.Equal(t, models.CategoryCV, paper.Category)
}

func TestLoadPatchKeepsOnlyPresentFields(t *testing.T) {
	patch, err := loadPatch(writeTemp(t, "changes.yaml", "summary:\n  takeaway: New takeaway.\n"))
	require.NoError(t, err)

	assert.Nil(t, patch.Title)
	assert.Nil(t, patch.Authors)
	require.NotNil(t, patch.Summary)
	assert.Nil(t, patch.Summary.Problem)
	require.NotNil(t, patch.Summary.Takeaway)
	assert.Equal(t, "New takeaway.", *patch.Summary.Takeaway)
}

func TestLoadPaperRejectsBadFiles(t *testing.T) {
	_, err := loadPaper(writeTemp(t, "empty.yaml", ""))
	assert.Error(t, err)

	_, err = loadPaper(writeTemp(t, "broken.json", "{"))
	assert.Error(t, err)

	_, err = loadPaper(writeTemp(t, "date.yaml", "publicationDate: someday\n"))
	assert.Error(t, err)

	_, err = loadPaper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
