package profile

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xxxsen/foliochat/internal/filestore"
	"github.com/xxxsen/foliochat/internal/model"
	"github.com/xxxsen/foliochat/internal/rag"
)

// Profile is the hand-authored content of one portfolio persona.
type Profile struct {
	Name           string               `yaml:"name"`
	SystemPrompt   string               `yaml:"system_prompt"`
	ContactBlock   string               `yaml:"contact_block"`
	ContactPills   []model.Pill         `yaml:"contact_pills"`
	DirectEntities []model.DirectEntity `yaml:"direct_entities"`
	TimelinePill   model.Pill           `yaml:"timeline_pill"`
	ShortTimeline  rag.ShortTimeline    `yaml:"short_timeline"`
	Conventions    rag.Conventions      `yaml:"conventions"`
}

// Load overlays the YAML document stored under key onto the defaults.
// Fields absent from the document keep their default value; lists present
// in the document replace the default list.
func Load(ctx context.Context, store filestore.Store, key string) (*Profile, error) {
	data, err := filestore.ReadAll(ctx, store, key)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", key, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) Validate() error {
	if strings.TrimSpace(p.SystemPrompt) == "" {
		return fmt.Errorf("profile.system_prompt is required")
	}
	if strings.TrimSpace(p.ContactBlock) == "" {
		return fmt.Errorf("profile.contact_block is required")
	}
	for i, pill := range p.ContactPills {
		if pill.IsZero() || pill.Label == "" {
			return fmt.Errorf("profile.contact_pills[%d] needs label and url", i)
		}
	}
	for i, e := range p.DirectEntities {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("profile.direct_entities[%d].name is required", i)
		}
		if e.Pill.IsZero() {
			return fmt.Errorf("profile.direct_entities[%d].pill.url is required", i)
		}
	}
	if strings.TrimSpace(p.ShortTimeline.OfferPhrase) != "" && strings.TrimSpace(p.ShortTimeline.Reply) == "" {
		return fmt.Errorf("profile.short_timeline.reply is required with an offer phrase")
	}
	return nil
}

// CaseStudyNames lists the titles the persona wants recognised by name.
func (p *Profile) CaseStudyNames() []string {
	out := make([]string, 0, len(p.DirectEntities))
	for _, e := range p.DirectEntities {
		if e.Pill.Category == model.PillCaseStudy {
			out = append(out, e.Name)
		}
	}
	return out
}
