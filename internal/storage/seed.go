package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/users-api-keywords/internal/domain"
	"gopkg.in/yaml.v3"
)

// seedFile represents the structure of a fixtures file.
type seedFile struct {
	Users []domain.User `json:"users" yaml:"users"`
}

// LoadSeed reads user fixtures from a YAML or JSON file. An empty path yields the built-in fixtures.
func LoadSeed(path string) ([]domain.User, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.DefaultSeed(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	file, err := parseSeed(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(file.Users))
	for i, u := range file.Users {
		u.Name = strings.TrimSpace(u.Name)
		u.City = strings.TrimSpace(u.City)
		if u.ID <= 0 {
			return nil, fmt.Errorf("users[%d]: id must be positive", i)
		}
		if _, dup := seen[u.ID]; dup {
			return nil, fmt.Errorf("duplicate user id %d", u.ID)
		}
		seen[u.ID] = struct{}{}
		file.Users[i] = u
	}
	if file.Users == nil {
		file.Users = []domain.User{}
	}
	return file.Users, nil
}

// parseSeed decodes fixtures by extension. JSON files use encoding/json; anything else is read as YAML.
func parseSeed(data []byte, ext string) (seedFile, error) {
	var (
		file seedFile
		err  error
	)
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return seedFile{}, fmt.Errorf("decode seed file: %w", err)
	}
	return file, nil
}
