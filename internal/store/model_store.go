// Package store persists trained classifiers together with their vectorizer
package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mikey/tweet-sentiment/internal/classifiers"
	"github.com/mikey/tweet-sentiment/internal/core"
	"github.com/mikey/tweet-sentiment/internal/vectorizer"
	"go.uber.org/zap"
)

const (
	classifierFile = "classifier.gob"
	vectorizerFile = "vectorizer.gob"
)

// envelope wraps a classifier blob with its kind so Load can rebuild the right type
type envelope struct {
	Kind string
	Blob []byte
}

// ModelStore keeps one directory per saved model under a root directory
type ModelStore struct {
	dir    string
	logger *zap.Logger
}

// NewModelStore creates a store rooted at dir
func NewModelStore(dir string, logger *zap.Logger) *ModelStore {
	return &ModelStore{dir: dir, logger: logger}
}

// Dir returns the root directory
func (s *ModelStore) Dir() string {
	return s.dir
}

// Save writes the classifier and vectorizer blobs for name
func (s *ModelStore) Save(name string, clf core.Classifier, vec *vectorizer.TfidfVectorizer) error {
	if err := validateName(name); err != nil {
		return err
	}
	modelDir := filepath.Join(s.dir, name)
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	var blob bytes.Buffer
	if err := clf.Save(&blob); err != nil {
		return fmt.Errorf("failed to serialize classifier: %w", err)
	}
	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(envelope{Kind: clf.Kind(), Blob: blob.Bytes()}); err != nil {
		return fmt.Errorf("failed to encode classifier: %w", err)
	}
	if err := writeFile(filepath.Join(modelDir, classifierFile), out.Bytes()); err != nil {
		return err
	}

	out.Reset()
	if err := vec.Save(&out); err != nil {
		return fmt.Errorf("failed to serialize vectorizer: %w", err)
	}
	if err := writeFile(filepath.Join(modelDir, vectorizerFile), out.Bytes()); err != nil {
		return err
	}

	s.logger.Info("Saved model",
		zap.String("name", name),
		zap.String("kind", clf.Kind()),
		zap.String("path", modelDir))
	return nil
}

// validateName rejects names that would resolve outside the store directory
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid model name: %q", name)
	}
	return nil
}

// writeFile replaces path atomically
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Load reads back the classifier and vectorizer saved under name
func (s *ModelStore) Load(name string) (core.Classifier, *vectorizer.TfidfVectorizer, error) {
	if err := validateName(name); err != nil {
		return nil, nil, err
	}
	modelDir := filepath.Join(s.dir, name)

	data, err := readFile(filepath.Join(modelDir, classifierFile))
	if err != nil {
		return nil, nil, err
	}
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, nil, fmt.Errorf("failed to decode classifier: %w", err)
	}
	clf, err := classifiers.New(env.Kind, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := clf.Load(bytes.NewReader(env.Blob)); err != nil {
		return nil, nil, err
	}

	data, err = readFile(filepath.Join(modelDir, vectorizerFile))
	if err != nil {
		return nil, nil, err
	}
	vec := vectorizer.New(vectorizer.Options{})
	if err := vec.Load(bytes.NewReader(data)); err != nil {
		return nil, nil, err
	}

	s.logger.Debug("Loaded model",
		zap.String("name", name),
		zap.String("kind", clf.Kind()),
		zap.Int("features", vec.NumFeatures()))
	return clf, vec, nil
}

// Fingerprint hashes the saved blobs for name. It changes whenever the model is retrained.
func (s *ModelStore) Fingerprint(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	h := sha256.New()
	for _, file := range []string{classifierFile, vectorizerFile} {
		data, err := readFile(filepath.Join(s.dir, name, file))
		if err != nil {
			return "", err
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", core.ErrModelNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return data, nil
}

// List returns the names of all saved models in sorted order
func (s *ModelStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, e.Name(), classifierFile)); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
