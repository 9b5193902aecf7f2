package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/momentum/pkg/timeutil"
)

// Config locates the persisted store.
type Config interface {
	BasePath() string
}

// Settings is the resolved momentum configuration.
type Settings struct {
	Path string `json:"path" yaml:"path"`

	BackendURL     string        `json:"backendURL" yaml:"backendURL"`
	BackendTimeout time.Duration `json:"backendTimeout" yaml:"backendTimeout"`

	AuthToken    string        `json:"-" yaml:"-"`
	ClientID     string        `json:"clientID,omitempty" yaml:"clientID,omitempty"`
	ClientSecret string        `json:"-" yaml:"-"`
	DeviceURL    string        `json:"deviceURL" yaml:"deviceURL"`
	TokenURL     string        `json:"tokenURL" yaml:"tokenURL"`
	Scopes       []string      `json:"scopes" yaml:"scopes"`
	AuthTimeout  time.Duration `json:"authTimeout" yaml:"authTimeout"`

	CalendarID string `json:"calendarID" yaml:"calendarID"`
	TimeZone   string `json:"timeZone,omitempty" yaml:"timeZone,omitempty"`

	PrepTime  time.Duration `json:"prepTime" yaml:"prepTime"`
	BumpAfter time.Duration `json:"bumpAfter" yaml:"bumpAfter"`

	SlotDuration time.Duration `json:"slotDuration" yaml:"slotDuration"`
	DayStart     int           `json:"dayStart" yaml:"dayStart"`
	DayEnd       int           `json:"dayEnd" yaml:"dayEnd"`
	SlotLimit    int           `json:"slotLimit" yaml:"slotLimit"`

	IOweList      string `json:"iOweList" yaml:"iOweList"`
	WaitingOnList string `json:"waitingOnList" yaml:"waitingOnList"`

	// ConfigFile is the file viper read, "" when defaults and env were used.
	ConfigFile string `json:"configFile,omitempty" yaml:"configFile,omitempty"`
}

func (s *Settings) BasePath() string {
	return s.Path
}

var defaultScopes = []string{
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/tasks",
	"https://www.googleapis.com/auth/gmail.compose",
	"https://www.googleapis.com/auth/gmail.readonly",
}

// LoadConfig reads .momentum.yaml from MOMENTUM_CONFIG_PATH, the working
// directory or $HOME, layered under MOMENTUM_* environment variables.
func LoadConfig() (*Settings, error) {
	v := viper.New()
	v.SetDefault("path", "~/.momentum.db")
	v.SetDefault("backend.url", "https://www.googleapis.com")
	v.SetDefault("backend.timeout", "30s")
	v.SetDefault("auth.device_url", "https://oauth2.googleapis.com/device/code")
	v.SetDefault("auth.token_url", "https://oauth2.googleapis.com/token")
	v.SetDefault("auth.scopes", defaultScopes)
	v.SetDefault("auth.timeout", "5m")
	v.SetDefault("calendar.id", "primary")
	v.SetDefault("defaults.prep_time", "45m")
	v.SetDefault("defaults.bump_after", "3d")
	v.SetDefault("slots.duration", "30m")
	v.SetDefault("slots.day_start", 9)
	v.SetDefault("slots.day_end", 17)
	v.SetDefault("slots.limit", 5)
	v.SetDefault("lists.i_owe", "Momentum: I owe")
	v.SetDefault("lists.waiting_on", "Momentum: Waiting on")

	v.SetConfigName(".momentum") // .yaml is implicit
	v.SetEnvPrefix("MOMENTUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("MOMENTUM_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}

	s := &Settings{
		Path:          path,
		BackendURL:    strings.TrimRight(v.GetString("backend.url"), "/"),
		AuthToken:     v.GetString("auth.token"),
		ClientID:      v.GetString("auth.client_id"),
		ClientSecret:  v.GetString("auth.client_secret"),
		DeviceURL:     v.GetString("auth.device_url"),
		TokenURL:      v.GetString("auth.token_url"),
		Scopes:        v.GetStringSlice("auth.scopes"),
		CalendarID:    v.GetString("calendar.id"),
		TimeZone:      v.GetString("calendar.timezone"),
		DayStart:      v.GetInt("slots.day_start"),
		DayEnd:        v.GetInt("slots.day_end"),
		SlotLimit:     v.GetInt("slots.limit"),
		IOweList:      v.GetString("lists.i_owe"),
		WaitingOnList: v.GetString("lists.waiting_on"),
		ConfigFile:    v.ConfigFileUsed(),
	}

	durations := []struct {
		key  string
		bare time.Duration
		dst  *time.Duration
	}{
		{"backend.timeout", time.Second, &s.BackendTimeout},
		{"auth.timeout", time.Second, &s.AuthTimeout},
		{"defaults.prep_time", time.Minute, &s.PrepTime},
		{"defaults.bump_after", timeutil.Day, &s.BumpAfter},
		{"slots.duration", time.Minute, &s.SlotDuration},
	}
	for _, d := range durations {
		parsed, err := timeutil.ParseDuration(v.GetString(d.key), d.bare, 0)
		if err != nil {
			return nil, fmt.Errorf("store: config %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if s.DayStart < 0 || s.DayEnd > 24 || s.DayStart >= s.DayEnd {
		return nil, fmt.Errorf("store: config slots: day_start %d must be before day_end %d", s.DayStart, s.DayEnd)
	}
	return s, nil
}
