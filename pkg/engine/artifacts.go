/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: artifacts.go
Description: Artifact storage. Interesting inputs are written as <prefix><kind>-<sha1>, with a
msgpack sidecar describing why they were kept. Writes go through a temp file and rename so
concurrent workers saving the same input never leave a torn file.
*/

package engine

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// MetaSuffix is appended to an artifact path to name its metadata sidecar
const MetaSuffix = ".meta"

// ArtifactPrefix locates artifacts on disk.
// "out/" means directory out with no file prefix; "out/run1-" means directory out, file prefix "run1-".
type ArtifactPrefix struct {
	Dir        string
	FilePrefix string
}

// ParseArtifactPrefix splits a prefix string into directory and file prefix
func ParseArtifactPrefix(p string) ArtifactPrefix {
	if p == "" {
		return ArtifactPrefix{Dir: "."}
	}
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(os.PathSeparator)) {
		return ArtifactPrefix{Dir: filepath.Clean(p)}
	}
	return ArtifactPrefix{Dir: filepath.Dir(p), FilePrefix: filepath.Base(p)}
}

// Path returns where an input of the given kind is stored
func (a ArtifactPrefix) Path(kind ExitKind, data []byte) string {
	return filepath.Join(a.Dir, fmt.Sprintf("%s%s-%x", a.FilePrefix, kind, sha1.Sum(data)))
}

// ArtifactMeta is stored next to each artifact
type ArtifactMeta struct {
	Kind       ExitKind  `msgpack:"kind"`
	Status     int       `msgpack:"status"`
	Harness    string    `msgpack:"harness"`
	InputName  string    `msgpack:"input_name"`
	RunID      string    `msgpack:"run_id"`
	Size       int       `msgpack:"size"`
	RecordedAt time.Time `msgpack:"recorded_at"`
}

// Write stores data and its metadata, returning the artifact path
func (a ArtifactPrefix) Write(data []byte, meta ArtifactMeta) (string, error) {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	path := a.Path(meta.Kind, data)
	meta.Size = len(data)

	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	encoded, err := msgpack.Marshal(&meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode artifact metadata: %w", err)
	}
	if err := writeAtomic(path+MetaSuffix, encoded); err != nil {
		return "", fmt.Errorf("failed to write artifact metadata: %w", err)
	}
	return path, nil
}

// ReadArtifactMeta loads the sidecar of the artifact at path
func ReadArtifactMeta(path string) (ArtifactMeta, error) {
	var meta ArtifactMeta
	raw, err := os.ReadFile(path + MetaSuffix)
	if err != nil {
		return meta, err
	}
	if err := msgpack.Unmarshal(raw, &meta); err != nil {
		return meta, fmt.Errorf("failed to decode artifact metadata: %w", err)
	}
	return meta, nil
}

func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
