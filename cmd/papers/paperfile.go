package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"paper_summaries_go_backend/internal/models"

	"gopkg.in/yaml.v3"
)

// readPaperFile reads a paper document written in YAML or JSON and returns
// it as JSON in the API's field naming. "-" reads standard input.
func readPaperFile(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return paperDocumentJSON(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

func paperDocumentJSON(data []byte, isJSON bool) ([]byte, error) {
	if isJSON {
		if !json.Valid(data) {
			return nil, fmt.Errorf("paper file is not valid JSON")
		}
		return data, nil
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse paper file: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("paper file is empty")
	}
	out, err := json.Marshal(jsonValue(doc))
	if err != nil {
		return nil, fmt.Errorf("encode paper file: %w", err)
	}
	return out, nil
}

// jsonValue converts YAML decoded values into ones encoding/json accepts.
func jsonValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = jsonValue(item)
		}
		return val
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(val))
		for k, item := range val {
			converted[fmt.Sprint(k)] = jsonValue(item)
		}
		return converted
	case []interface{}:
		for i, item := range val {
			val[i] = jsonValue(item)
		}
		return val
	case time.Time:
		return val.UTC().Format(models.DateLayout)
	default:
		return val
	}
}

func loadPaper(path string) (models.Paper, error) {
	var paper models.Paper
	data, err := readPaperFile(path)
	if err != nil {
		return paper, err
	}
	if err := json.Unmarshal(data, &paper); err != nil {
		return paper, fmt.Errorf("decode paper: %w", err)
	}
	return paper, nil
}

func loadPatch(path string) (models.PaperPatch, error) {
	var patch models.PaperPatch
	data, err := readPaperFile(path)
	if err != nil {
		return patch, err
	}
	if err := json.Unmarshal(data, &patch); err != nil {
		return patch, fmt.Errorf("decode paper changes: %w", err)
	}
	return patch, nil
}
