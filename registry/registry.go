// Package registry loads the suite manifest and produces executable
// suite trees. It stands in for the host framework's test-discovery
// layer: the core only consumes the trees it yields.
package registry

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/testinfra/progressive/types"
)

// Registry manages the suite manifest and its configuration
type Registry struct {
	config   Config
	manifest *manifest
}

// Config contains registry configuration
type Config struct {
	Log          log.Logger
	ManifestFile string
}

// manifest is the yaml shape of a suite definition file.
type manifest struct {
	Suites []suiteConfig `yaml:"suites"`
}

type suiteConfig struct {
	Name        string        `yaml:"name"`
	Fixtures    []string      `yaml:"fixtures,omitempty"`
	HasSetup    bool          `yaml:"has_setup,omitempty"`
	HasTeardown bool          `yaml:"has_teardown,omitempty"`
	Tests       []string      `yaml:"tests,omitempty"`
	Children    []suiteConfig `yaml:"children,omitempty"`
}

// NewRegistry creates a new registry instance
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.ManifestFile == "" {
		return nil, fmt.Errorf("suite manifest file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{
		config: cfg,
	}
	if err := r.loadManifest(cfg.ManifestFile); err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "len(suites)", len(r.manifest.Suites))
	return r, nil
}

func (r *Registry) loadManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read manifest file: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse manifest file: %w", err)
	}
	if len(m.Suites) == 0 {
		return fmt.Errorf("manifest defines no suites")
	}
	for i := range m.Suites {
		if err := validateSuite(&m.Suites[i]); err != nil {
			return err
		}
	}
	r.manifest = &m
	return nil
}

func validateSuite(sc *suiteConfig) error {
	if sc.Name == "" {
		return fmt.Errorf("suite with tests %v is missing a name", sc.Tests)
	}
	if len(sc.Tests) == 0 && len(sc.Children) == 0 {
		return fmt.Errorf("suite %q defines no tests or children", sc.Name)
	}
	seen := make(map[string]bool)
	for _, test := range sc.Tests {
		if test == "" {
			return fmt.Errorf("suite %q has an empty test name", sc.Name)
		}
		if seen[test] {
			return fmt.Errorf("suite %q lists test %q twice", sc.Name, test)
		}
		seen[test] = true
	}
	// Listing fixtures implies the scope owns shared setup and
	// teardown unless the manifest says otherwise.
	if len(sc.Fixtures) > 0 && !sc.HasSetup && !sc.HasTeardown {
		sc.HasSetup = true
		sc.HasTeardown = true
	}
	for i := range sc.Children {
		if err := validateSuite(&sc.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// Suite builds a fresh suite tree from the manifest. Each call yields
// an independent tree, which makes Suite directly usable as the
// suite-producing operation the counter invokes twice.
func (r *Registry) Suite() *types.Suite {
	children := make([]*types.Suite, 0, len(r.manifest.Suites))
	for i := range r.manifest.Suites {
		children = append(children, buildSuite(&r.manifest.Suites[i]))
	}
	return types.NewContainer("root", children...)
}

func buildSuite(sc *suiteConfig) *types.Suite {
	var children []*types.Suite
	for _, test := range sc.Tests {
		children = append(children, types.NewTest(sc.Name+"/"+test, test))
	}
	for i := range sc.Children {
		children = append(children, buildSuite(&sc.Children[i]))
	}
	node := types.NewContainer(sc.Name, children...)
	ctx := types.NewContext(sc.Name, sc.Fixtures...)
	ctx.HasSetup = sc.HasSetup
	ctx.HasTeardown = sc.HasTeardown
	node.Context = ctx
	return node
}

// TestCount returns the number of terminal units one built tree holds.
func (r *Registry) TestCount() int {
	return r.Suite().CountTestUnits()
}
