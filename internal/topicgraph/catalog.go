package topicgraph

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// MinCatalogVersion is the oldest catalog schema this build understands.
const MinCatalogVersion = "v1.1.0"

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the on-disk representation of a topic graph.
type Catalog struct {
	Version          string   `yaml:"version"`
	DefaultTopic     string   `yaml:"default_topic"`
	FoundationBranch string   `yaml:"foundation_branch"`
	Branches         []Branch `yaml:"branches"`
	Topics           []Topic  `yaml:"topics"`
}

// ParseCatalog decodes and version-checks a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	v := c.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return nil, fmt.Errorf("catalog version %q is not a semantic version", c.Version)
	}
	if semver.Compare(v, MinCatalogVersion) < 0 {
		return nil, fmt.Errorf("catalog version %s is older than the minimum supported %s", v, MinCatalogVersion)
	}
	c.Version = v
	return &c, nil
}

// Graph builds a validated Graph from the catalog.
func (c *Catalog) Graph() (*Graph, error) {
	var opts []Option
	if c.DefaultTopic != "" {
		opts = append(opts, WithDefaultTopic(c.DefaultTopic))
	}
	if c.FoundationBranch != "" {
		opts = append(opts, WithFoundationBranch(c.FoundationBranch))
	}
	return New(c.Branches, c.Topics, opts...)
}

// Load reads a catalog file, or the embedded default when path is empty.
func Load(path string) (*Graph, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}
	return c.Graph()
}

// Default returns the graph built from the embedded catalog.
func Default() (*Graph, error) {
	return Load("")
}
