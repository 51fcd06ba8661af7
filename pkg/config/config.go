package config

import (
	"errors"
	"log/slog"

	"github.com/alecthomas/chroma/v2/styles"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Preview styles understood by glamour.
var previewStyles = []any{"auto", "dark", "light", "notty", "ascii", "dracula", "pink", "tokyo-night"}

// Config is the user configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Preview PreviewConfig `yaml:"preview"`
	Editor  EditorConfig  `yaml:"editor"`
	Watch   bool          `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Preview.Validate(); err != nil {
		return err
	}
	return c.Editor.Validate()
}

// LogConfig controls the log file. The terminal belongs to the TUI, so logs
// never go to stderr while it runs.
type LogConfig struct {
	Level slog.Level `yaml:"level"`
	File  string     `yaml:"file"` // empty means <data dir>/mdwiki.log
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In(slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError)),
	)
}

// PreviewConfig controls rendered markdown.
type PreviewConfig struct {
	Style    string `yaml:"style"`
	WordWrap int    `yaml:"word_wrap"` // 0 wraps at the pane width
}

// Validate validates the preview configuration.
func (c *PreviewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Style, validation.Required, validation.In(previewStyles...)),
		validation.Field(&c.WordWrap, validation.Min(0), validation.Max(400)),
	)
}

// EditorConfig controls the source view.
type EditorConfig struct {
	HighlightStyle string `yaml:"highlight_style"` // chroma style name
	TabWidth       int    `yaml:"tab_width"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HighlightStyle, validation.Required, validation.By(knownChromaStyle)),
		validation.Field(&c.TabWidth, validation.Min(1), validation.Max(16)),
	)
}

func knownChromaStyle(value any) error {
	name, _ := value.(string)
	if _, ok := styles.Registry[name]; !ok {
		return errors.New("unknown highlight style")
	}
	return nil
}

// NewDefaultConfig returns a Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: slog.LevelInfo,
		},
		Preview: PreviewConfig{
			Style: "dark",
		},
		Editor: EditorConfig{
			HighlightStyle: "monokai",
			TabWidth:       4,
		},
		Watch: true,
	}
}
