package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("").Valid())
	assert.False(t, Category("nlp").Valid(), "categories are case-sensitive")
	assert.False(t, Category("Biology").Valid())
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.January, 15)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-15"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-15T22:30:00Z"`), &parsed))
	assert.Equal(t, d, parsed)

	var empty Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())
	data, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	assert.Error(t, json.Unmarshal([]byte(`"15/01/2024"`), &parsed))
	assert.Error(t, json.Unmarshal([]byte(`20240115`), &parsed))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2023, time.May, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2023-05-02", d.String())

	require.NoError(t, d.Scan([]byte("2022-12-31")))
	assert.Equal(t, "2022-12-31", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	value, err := d.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestPaperPatchApply(t *testing.T) {
	paper := Paper{
		Title:    "A Study",
		Authors:  []string{"Ada Lovelace"},
		Category: CategoryML,
		Summary:  Summary{Problem: "p", Method: "m", Dataset: "d", KeyResults: "k", Takeaway: "t"},
	}

	var patch PaperPatch
	require.NoError(t, json.Unmarshal([]byte(`{
		"authors": ["Alan Turing", "Grace Hopper"],
		"publicationDate": "2020-02-29",
		"summary": {"takeaway": "new takeaway"}
	}`), &patch))
	patch.Apply(&paper)

	assert.Equal(t, "A Study", paper.Title)
	assert.Equal(t, []string{"Alan Turing", "Grace Hopper"}, paper.Authors)
	assert.Equal(t, NewDate(2020, time.February, 29), paper.PublicationDate)
	assert.Equal(t, CategoryML, paper.Category)
	assert.Equal(t, Summary{Problem: "p", Method: "m", Dataset: "d", KeyResults: "k", Takeaway: "new takeaway"}, paper.Summary)

	patch.Authors[0] = "mutated"
	assert.Equal(t, "Alan Turing", paper.Authors[0], "authors are copied")
}

func TestPaperPageJSONShape(t *testing.T) {
	data, err := json.Marshal(PaperPage{Papers: []Paper{}, TotalPages: 0, CurrentPage: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"papers":[],"totalPages":0,"currentPage":1,"total":0}`, string(data))
}
