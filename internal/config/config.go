// Package config loads mapper settings from a file and OBJMAP_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"object-mapper/internal/mapping"
	"object-mapper/primitive"
)

// EnvPrefix prefixes the environment variables that override settings,
// e.g. OBJMAP_COLLECTION or OBJMAP_LOG_LEVEL.
const EnvPrefix = "OBJMAP"

// Conventions accepted by Settings.Convention.
const (
	ConventionDirect     = "direct"
	ConventionProjection = "projection"
)

// Settings are the defaults a mapper starts from.
type Settings struct {
	Convention  string                     `mapstructure:"convention" yaml:"convention"`
	IgnoreCase  bool                       `mapstructure:"ignore_case" yaml:"ignore_case"`
	Collection  mapping.CollectionStrategy `mapstructure:"collection" yaml:"collection"`
	Reference   mapping.ReferenceBehavior  `mapstructure:"reference" yaml:"reference"`
	Tracking    bool                       `mapstructure:"tracking" yaml:"tracking"`
	Conversions []string                   `mapstructure:"conversions" yaml:"conversions"`
	Members     MemberSettings             `mapstructure:"members" yaml:"members"`
	Log         LogSettings                `mapstructure:"log" yaml:"log"`
}

// MemberSettings select the members the type metadata provider exposes.
type MemberSettings struct {
	Fields       bool `mapstructure:"fields" yaml:"fields"`
	Accessors    bool `mapstructure:"accessors" yaml:"accessors"`
	DeclaredOnly bool `mapstructure:"declared_only" yaml:"declared_only"`
}

// LogSettings configure the logger built by package logging.
type LogSettings struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
	Encoding    string `mapstructure:"encoding" yaml:"encoding"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Convention:  ConventionDirect,
		Collection:  mapping.CollectionReset,
		Reference:   mapping.ReferenceReuseTarget,
		Tracking:    true,
		Conversions: []string{"all"},
		Members:     MemberSettings{Fields: true, Accessors: true},
		Log:         LogSettings{Level: "info", Encoding: "console"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("convention", d.Convention)
	v.SetDefault("ignore_case", d.IgnoreCase)
	v.SetDefault("collection", d.Collection.String())
	v.SetDefault("reference", d.Reference.String())
	v.SetDefault("tracking", d.Tracking)
	v.SetDefault("conversions", d.Conversions)
	v.SetDefault("members.fields", d.Members.Fields)
	v.SetDefault("members.accessors", d.Members.Accessors)
	v.SetDefault("members.declared_only", d.Members.DeclaredOnly)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("log.encoding", d.Log.Encoding)
}

// Load reads settings from path, or from objmap.yaml in the working directory
// when path is empty. A missing objmap.yaml is not an error; a missing path is.
// Environment variables take precedence over the file.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("objmap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (Settings, error) {
	var s Settings

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))

	if err := v.Unmarshal(&s, hook); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Validate checks the values that decoding cannot.
func (s Settings) Validate() error {
	switch s.Convention {
	case ConventionDirect, ConventionProjection:
	default:
		return fmt.Errorf("convention must be %s or %s, got: %q", ConventionDirect, ConventionProjection, s.Convention)
	}

	if _, err := s.Categories(); err != nil {
		return err
	}

	if !s.Members.Fields && !s.Members.Accessors {
		return errors.New("members: at least one of fields and accessors must be enabled")
	}

	return nil
}

// Categories returns the conversion families enabled by Conversions.
func (s Settings) Categories() (primitive.CategoryEnum, error) {
	return primitive.ParseCategories(s.Conversions)
}

// Options returns the root mapping options the settings describe.
func (s Settings) Options() mapping.Options {
	tracking := s.Tracking

	return mapping.Options{
		Collection: s.Collection,
		Reference:  s.Reference,
		Tracking:   &tracking,
	}
}
