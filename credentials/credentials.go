// Package credentials resolves hosting-API credentials for a named profile (e.g. "github_com"). A Factory is built
// once at process start and is read-only afterwards.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// DefaultProfile is the profile used when none is given
const DefaultProfile = "github_com"

// DotEnvFile is read by LoadDotEnv when no path is given
const DotEnvFile = ".env"

// Credentials holds everything needed to authenticate against a hosting API
type Credentials struct {
	Profile   string `yaml:"-"`
	Token     string `yaml:"token"`
	ApiUrl    string `yaml:"api_url"`
	UploadUrl string `yaml:"upload_url"`
}

// Factory yields credentials for a named profile
type Factory interface {
	Lookup(profile string) (Credentials, error)
}

// Overrides take precedence over any value read from a config file. They usually come from flags or env vars.
type Overrides struct {
	Token  string
	ApiUrl string
}

type profileFactory struct {
	profiles  map[string]Credentials
	overrides Overrides
	source    string
}

type yamlFile struct {
	Profiles map[string]Credentials `yaml:"profiles"`
}

// LoadDotEnv copies the variables of a .env file into the process environment. It must run before the CLI flags are
// parsed so that their env var bindings see the values. Variables already set keep their value, and a missing file
// is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DotEnvFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// NewFactory loads the profiles in configPath. The file format is picked by extension (.ini, .yaml, .yml). With an
// empty configPath only the overrides are available, under any profile name.
func NewFactory(configPath string, overrides Overrides) (Factory, error) {
	factory := &profileFactory{
		profiles:  map[string]Credentials{},
		overrides: overrides,
		source:    "environment",
	}

	if configPath == "" {
		return factory, nil
	}
	factory.source = configPath

	var err error
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".ini":
		factory.profiles, err = loadIni(configPath)
	case ".yaml", ".yml":
		factory.profiles, err = loadYaml(configPath)
	default:
		return nil, fmt.Errorf("unsupported credentials file %s: expected a .ini, .yaml or .yml file", configPath)
	}
	if err != nil {
		return nil, err
	}

	return factory, nil
}

// Lookup returns the credentials for profile. Overrides win over file values.
func (f *profileFactory) Lookup(profile string) (Credentials, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	creds, found := f.profiles[profile]
	if !found && len(f.profiles) > 0 {
		return Credentials{}, fmt.Errorf("profile %s not found in %s", profile, f.source)
	}
	creds.Profile = profile

	if f.overrides.Token != "" {
		creds.Token = f.overrides.Token
	}
	if f.overrides.ApiUrl != "" {
		creds.ApiUrl = f.overrides.ApiUrl
	}

	if creds.Token == "" {
		return Credentials{}, fmt.Errorf("no token configured for profile %s in %s", profile, f.source)
	}

	return creds, nil
}

func loadIni(path string) (map[string]Credentials, error) {
	cfgFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	profiles := map[string]Credentials{}
	for _, section := range cfgFile.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		profiles[section.Name()] = Credentials{
			Token:     section.Key("token").String(),
			ApiUrl:    section.Key("api_url").String(),
			UploadUrl: section.Key("upload_url").String(),
		}
	}
	return profiles, nil
}

func loadYaml(path string) (map[string]Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var parsed yamlFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", path, err)
	}
	if parsed.Profiles == nil {
		return map[string]Credentials{}, nil
	}
	return parsed.Profiles, nil
}
