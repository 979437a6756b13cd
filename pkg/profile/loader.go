package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a profile from a JSON or YAML file, chosen by extension.
func Load(path string) (p Profile, err error) {
	// Read file
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read profile file: %s", path)
		return p, err
	}

	// Parse by extension
	if isYAML(path) {
		err = yaml.Unmarshal(fileData, &p)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse profile YAML: %s", path)
			return p, err
		}
		return p, err
	}

	err = json.Unmarshal(fileData, &p)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse profile JSON: %s", path)
		return p, err
	}

	return p, err
}

// Save writes a profile to path in the format implied by its extension.
func Save(path string, p Profile) (err error) {
	var data []byte
	if isYAML(path) {
		data, err = yaml.Marshal(p)
	} else {
		data, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		err = errors.Wrap(err, "failed to marshal profile")
		return err
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create profile directory: %s", dir)
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write profile file: %s", path)
		return err
	}

	return err
}

func isYAML(path string) (result bool) {
	ext := strings.ToLower(filepath.Ext(path))
	result = ext == ".yaml" || ext == ".yml"
	return result
}
