// Package crisis serves the helplines and coping exercises shown when an
// entry raises a crisis alert.
package crisis

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed resources.yaml
var embeddedResources []byte

var ErrNotFound = errors.New("[Crisis] no resources for country")

type Hotline struct {
	Name  string `yaml:"name" json:"name"`
	Phone string `yaml:"phone,omitempty" json:"phone,omitempty"`
	Text  string `yaml:"text,omitempty" json:"text,omitempty"`
}

type Country struct {
	Name      string    `yaml:"name" json:"name"`
	Emergency string    `yaml:"emergency" json:"emergency"`
	Hotlines  []Hotline `yaml:"hotlines" json:"hotlines"`
	Directory string    `yaml:"directory" json:"directory"`
}

type BreathingPhase struct {
	Step    string `yaml:"step" json:"step"`
	Seconds int    `yaml:"seconds" json:"seconds"`
}

type GroundingStep struct {
	Sense string `yaml:"sense" json:"sense"`
	Count int    `yaml:"count" json:"count"`
}

type Exercises struct {
	Breathing struct {
		Name   string           `yaml:"name" json:"name"`
		Phases []BreathingPhase `yaml:"phases" json:"phases"`
	} `yaml:"breathing" json:"breathing"`
	Grounding struct {
		Name  string          `yaml:"name" json:"name"`
		Steps []GroundingStep `yaml:"steps" json:"steps"`
	} `yaml:"grounding" json:"grounding"`
}

// Resources is the payload returned for one country.
type Resources struct {
	Country   string    `json:"country"`
	Helplines Country   `json:"helplines"`
	Exercises Exercises `json:"exercises"`
}

type Catalog struct {
	DefaultCountry string             `yaml:"default_country"`
	Countries      map[string]Country `yaml:"countries"`
	Exercises      Exercises          `yaml:"exercises"`
}

// Parse decodes a resources document. The default country must be present.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("[Crisis] failed to parse resources: %w", err)
	}
	c.DefaultCountry = strings.ToUpper(c.DefaultCountry)
	if _, ok := c.Countries[c.DefaultCountry]; !ok {
		return nil, fmt.Errorf("[Crisis] default country %q: %w", c.DefaultCountry, ErrNotFound)
	}
	return &c, nil
}

// Load parses the embedded document.
func Load() (*Catalog, error) {
	return Parse(embeddedResources)
}

func (c *Catalog) Lookup(country string) (Resources, error) {
	code := strings.ToUpper(strings.TrimSpace(country))
	entry, ok := c.Countries[code]
	if !ok {
		return Resources{}, fmt.Errorf("%w: %q", ErrNotFound, country)
	}
	return Resources{Country: code, Helplines: entry, Exercises: c.Exercises}, nil
}

// For returns resources for country, or the default country's when it is
// empty or unknown.
func (c *Catalog) For(country string) Resources {
	res, err := c.Lookup(country)
	if errors.Is(err, ErrNotFound) {
		res, _ = c.Lookup(c.DefaultCountry)
	}
	return res
}
