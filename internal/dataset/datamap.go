package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/DjordjeVuckovic/probe-report/internal/apperr"
)

const DataMapFile = "data_map.json"

const (
	ModeTrain = "train"
	ModeDev   = "dev"
	ModeTest  = "test"
)

// DataMap is the index of a data directory. File names are relative to the directory.
type DataMap struct {
	Models    []string `json:"models"`
	Languages []string `json:"languages"`
	Tasks     []string `json:"tasks"`
	// mode -> model -> language -> file
	MapEmbeddings map[string]map[string]map[string]string `json:"map_embeddings"`
	// mode -> model -> language -> task -> file
	MapTargets map[string]map[string]map[string]map[string]string `json:"map_targets"`
	// mode -> model -> language -> task -> CoNLL-U file
	MapConll map[string]map[string]map[string]map[string]string `json:"map_conll"`
}

// Reader resolves shard paths for one model of a data directory.
type Reader struct {
	dir   string
	model string
	m     DataMap
}

func Open(dataDir, model string) (*Reader, error) {
	raw, err := os.ReadFile(filepath.Join(dataDir, DataMapFile))
	if err != nil {
		return nil, fmt.Errorf("read data map: %w", err)
	}

	var m DataMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse data map: %w", err)
	}

	if !slices.Contains(m.Models, model) {
		return nil, apperr.NewUnavailable("model", model, m.Models)
	}

	return &Reader{dir: dataDir, model: model, m: m}, nil
}

func (r *Reader) Model() string { return r.model }

func (r *Reader) Map() DataMap { return r.m }

// Require checks up front that every language of every '+'-joined group and every task was
// extracted for the model.
func (r *Reader) Require(languages, tasks []string) error {
	for _, group := range languages {
		for _, lang := range SplitGroup(group) {
			if !slices.Contains(r.m.Languages, lang) {
				return apperr.NewUnavailable("language", lang, r.m.Languages)
			}
		}
	}
	for _, t := range tasks {
		if !slices.Contains(r.m.Tasks, t) {
			return apperr.NewUnavailable("task", t, r.m.Tasks)
		}
	}
	return nil
}

func (r *Reader) EmbeddingsPath(mode, lang string) (string, error) {
	fn := r.m.MapEmbeddings[mode][r.model][lang]
	if fn == "" {
		return "", fmt.Errorf("no embeddings for %s/%s/%s", mode, r.model, lang)
	}
	return filepath.Join(r.dir, fn), nil
}

func (r *Reader) TargetsPath(mode, lang, task string) (string, error) {
	fn := r.m.MapTargets[mode][r.model][lang][task]
	if fn == "" {
		return "", fmt.Errorf("no targets for %s/%s/%s/%s", mode, r.model, lang, task)
	}
	return filepath.Join(r.dir, fn), nil
}

// ConllPath returns the CoNLL-U file the task data of a language was derived from.
func (r *Reader) ConllPath(mode, lang, task string) (string, error) {
	fn := r.m.MapConll[mode][r.model][lang][task]
	if fn == "" {
		return "", fmt.Errorf("no conll file for %s/%s/%s/%s", mode, r.model, lang, task)
	}
	if filepath.IsAbs(fn) {
		return fn, nil
	}
	return filepath.Join(r.dir, fn), nil
}

// SplitGroup expands a '+'-joined language group into its members.
func SplitGroup(group string) []string {
	return strings.Split(group, "+")
}
