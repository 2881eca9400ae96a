/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inputs.go
Description: Input loading for replay. Files are read as-is; directories contribute their
regular, non-hidden files in name order.
*/

package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrNoInputs is returned when there is nothing to run
var ErrNoInputs = errors.New("no inputs to run")

// NewInput wraps an in-memory buffer
func NewInput(name string, data []byte) Input {
	return Input{ID: uuid.NewString(), Name: name, Data: data}
}

// LoadInputs reads inputs from files and directories (non-recursive)
func LoadInputs(paths ...string) ([]Input, error) {
	var inputs []Input
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", p, err)
		}
		if !info.IsDir() {
			in, err := loadFile(p)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to list input directory %s: %w", p, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || strings.HasSuffix(entry.Name(), MetaSuffix) || !entry.Type().IsRegular() {
				continue
			}
			in, err := loadFile(filepath.Join(p, entry.Name()))
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
		}
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	return inputs, nil
}

func loadFile(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("failed to read input %s: %w", path, err)
	}
	in := NewInput(filepath.Base(path), data)
	in.Path = path
	return in, nil
}
