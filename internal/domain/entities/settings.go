package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	logger "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultRepositoryURL is queried when no repository is configured.
	DefaultRepositoryURL = "https://repo.maven.apache.org/maven2"

	DefaultResolverTimeout = 30 * time.Second
	DefaultResolverWorkers = 4
	DefaultResolverRetries = 2
)

// Settings is the configuration of a version update run.
type Settings struct {
	BaseVersion          string             `yaml:"base_version"`
	UpstreamDependencies []string           `yaml:"upstream_dependencies"`
	Repositories         []RepositoryConfig `yaml:"repositories"`
	Resolver             ResolverConfig     `yaml:"resolver"`
	Revision             string             `yaml:"revision"`
	ChangedModulesFile   string             `yaml:"changed_modules_file"`
}

// RepositoryConfig describes one remote artifact repository.
type RepositoryConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"` // Inline or ${ENV_VAR}
	Password string `yaml:"password"` // Inline, ${ENV_VAR}, or file path
}

// ResolverConfig tunes the remote version queries.
type ResolverConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Workers int           `yaml:"workers"`
	Retries int           `yaml:"retries"` // 0 selects the default, negative disables retries
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings loads the configuration file at path. Files ending in ".hcl"
// are read as HCL, everything else as YAML.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings *Settings
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		settings, err = parseHCLSettings(data, path)
	} else {
		settings, err = parseYAMLSettings(data)
	}
	if err != nil {
		return nil, err
	}

	for i := range settings.Repositories {
		settings.Repositories[i].Username = resolveToken(settings.Repositories[i].Username)
		settings.Repositories[i].Password = resolveToken(settings.Repositories[i].Password)
	}

	settings.applyDefaults()
	if validateErr := validate(settings); validateErr != nil {
		return nil, validateErr
	}
	return settings, nil
}

// DefaultSettings returns the configuration used when no file is found.
func DefaultSettings() *Settings {
	settings := &Settings{}
	settings.applyDefaults()
	return settings
}

// UpstreamRules parses the configured upstream dependency rules in order.
func (s *Settings) UpstreamRules() ([]*UpstreamRule, error) {
	return ParseUpstreamRules(s.UpstreamDependencies)
}

// RetryCount returns the effective number of retries per query.
func (s *Settings) RetryCount() int {
	switch {
	case s.Resolver.Retries < 0:
		return 0
	case s.Resolver.Retries == 0:
		return DefaultResolverRetries
	default:
		return s.Resolver.Retries
	}
}

func (s *Settings) applyDefaults() {
	if len(s.Repositories) == 0 {
		s.Repositories = []RepositoryConfig{{URL: DefaultRepositoryURL}}
	}
	if s.Resolver.Timeout <= 0 {
		s.Resolver.Timeout = DefaultResolverTimeout
	}
	if s.Resolver.Workers <= 0 {
		s.Resolver.Workers = DefaultResolverWorkers
	}
}

// FindConfigFile searches the project directory, then the standard
// locations, for a configuration file.
func FindConfigFile(projectDir string) (string, error) {
	locations := []string{projectDir, ".", ".config", "configs"}
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{
		".nonsnapshot.yaml",
		".nonsnapshot.yml",
		"nonsnapshot.yaml",
		"nonsnapshot.yml",
		"nonsnapshot.hcl",
	}

	for _, loc := range locations {
		if loc == "" {
			continue
		}
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}
	return "", errors.New("config file not found in default locations")
}

func parseYAMLSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &settings, nil
}

//nolint:gochecknoglobals // read-only schema
var hclSettingsSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "base_version"},
		{Name: "upstream_dependencies"},
		{Name: "revision"},
		{Name: "changed_modules_file"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "resolver"},
		{Type: "repository"},
	},
}

func parseHCLSettings(data []byte, path string) (*Settings, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %w", diags)
	}

	content, _, diags := file.Body.PartialContent(hclSettingsSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %w", diags)
	}

	settings := &Settings{}
	var err error
	for name, attr := range content.Attributes {
		switch name {
		case "base_version":
			settings.BaseVersion, err = hclString(attr)
		case "revision":
			settings.Revision, err = hclString(attr)
		case "changed_modules_file":
			settings.ChangedModulesFile, err = hclString(attr)
		case "upstream_dependencies":
			settings.UpstreamDependencies, err = hclStringList(attr)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, block := range content.Blocks {
		attrs, attrDiags := block.Body.JustAttributes()
		if attrDiags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s block: %w", block.Type, attrDiags)
		}
		switch block.Type {
		case "resolver":
			err = decodeHCLResolver(attrs, &settings.Resolver)
		case "repository":
			var repo RepositoryConfig
			err = decodeHCLRepository(attrs, &repo)
			settings.Repositories = append(settings.Repositories, repo)
		}
		if err != nil {
			return nil, err
		}
	}
	return settings, nil
}

func decodeHCLResolver(attrs hcl.Attributes, resolver *ResolverConfig) error {
	if attr, ok := attrs["timeout"]; ok {
		raw, err := hclString(attr)
		if err != nil {
			return err
		}
		timeout, parseErr := time.ParseDuration(raw)
		if parseErr != nil {
			return &ConfigurationError{Value: raw, Reason: "resolver.timeout is not a duration"}
		}
		resolver.Timeout = timeout
	}
	for name, target := range map[string]*int{"workers": &resolver.Workers, "retries": &resolver.Retries} {
		attr, ok := attrs[name]
		if !ok {
			continue
		}
		n, err := hclInt(attr)
		if err != nil {
			return err
		}
		*target = n
	}
	return nil
}

func decodeHCLRepository(attrs hcl.Attributes, repo *RepositoryConfig) error {
	for name, target := range map[string]*string{
		"url":      &repo.URL,
		"username": &repo.Username,
		"password": &repo.Password,
	} {
		attr, ok := attrs[name]
		if !ok {
			continue
		}
		value, err := hclString(attr)
		if err != nil {
			return err
		}
		*target = value
	}
	return nil
}

func hclValue(attr *hcl.Attribute) (cty.Value, error) {
	value, diags := attr.Expr.Value(&hcl.EvalContext{})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to evaluate %q: %w", attr.Name, diags)
	}
	return value, nil
}

func hclString(attr *hcl.Attribute) (string, error) {
	value, err := hclValue(attr)
	if err != nil {
		return "", err
	}
	if value.IsNull() || value.Type() != cty.String {
		return "", &ConfigurationError{Value: attr.Name, Reason: "expected a string"}
	}
	return value.AsString(), nil
}

func hclInt(attr *hcl.Attribute) (int, error) {
	value, err := hclValue(attr)
	if err != nil {
		return 0, err
	}
	if value.IsNull() || value.Type() != cty.Number {
		return 0, &ConfigurationError{Value: attr.Name, Reason: "expected a number"}
	}
	n, _ := value.AsBigFloat().Int64()
	return int(n), nil
}

func hclStringList(attr *hcl.Attribute) ([]string, error) {
	value, err := hclValue(attr)
	if err != nil {
		return nil, err
	}
	if value.IsNull() || !(value.Type().IsListType() || value.Type().IsTupleType()) {
		return nil, &ConfigurationError{Value: attr.Name, Reason: "expected a list of strings"}
	}

	items := value.AsValueSlice()
	result := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsNull() || item.Type() != cty.String {
			return nil, &ConfigurationError{Value: attr.Name, Reason: "expected a list of strings"}
		}
		result = append(result, item.AsString())
	}
	return result, nil
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read credential file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read credential from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks the configuration values that can be checked before a run.
func validate(settings *Settings) error {
	for i, repo := range settings.Repositories {
		if strings.TrimSpace(repo.URL) == "" {
			return &ConfigurationError{
				Value:  fmt.Sprintf("repositories[%d]", i),
				Reason: "url is required",
			}
		}
	}

	if _, err := settings.UpstreamRules(); err != nil {
		return err
	}

	if strings.Contains(settings.Revision, " ") {
		return &ConfigurationError{Value: settings.Revision, Reason: "revision must not contain spaces"}
	}
	return nil
}
