package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
)

var ErrEmptyCatalog = errors.New("challenge catalog is empty")

// ChallengeDefinition is one entry of the weekly challenge catalog
// file.
type ChallengeDefinition struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Catalog picks challenge definitions from a JSON file. The file is
// re-read on every pick so edits take effect without a restart.
type Catalog struct {
	path string
}

func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

func (c *Catalog) Random() (*ChallengeDefinition, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read challenge catalog: %w", err)
	}
	var defs []ChallengeDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse challenge catalog: %w", err)
	}
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}
	def := defs[rand.Intn(len(defs))]
	return &def, nil
}
