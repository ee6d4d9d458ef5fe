package nytimes

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"newshub/internal/domain/entity"
)

//go:embed sections.yaml
var sectionsYAML []byte

type sectionFile struct {
	Sections []entity.ReferenceItem `yaml:"sections"`
}

var (
	sectionsOnce sync.Once
	sectionsList []entity.ReferenceItem
	sectionsErr  error
)

// parseSections decodes the embedded section list.
func parseSections(data []byte) ([]entity.ReferenceItem, error) {
	var f sectionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse nytimes sections: %w", err)
	}
	for i := range f.Sections {
		if f.Sections[i].ID == "" || f.Sections[i].Name == "" {
			return nil, fmt.Errorf("parse nytimes sections: entry %d is incomplete", i)
		}
		f.Sections[i].Provider = entity.ProviderNYTimes
	}
	return f.Sections, nil
}

// Sections returns the static section list. It never performs I/O.
func Sections() ([]entity.ReferenceItem, error) {
	sectionsOnce.Do(func() {
		sectionsList, sectionsErr = parseSections(sectionsYAML)
	})
	if sectionsErr != nil {
		return nil, sectionsErr
	}
	out := make([]entity.ReferenceItem, len(sectionsList))
	copy(out, sectionsList)
	return out, nil
}
