package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// envKeyReplacer maps "mail.host" to the MAIL_HOST environment variable.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Viper is a Config implementation backed by github.com/spf13/viper.
//
// Every key can be overridden from the environment: "modules.auth.max_attempts"
// reads MODULES_AUTH_MAX_ATTEMPTS first.
type Viper struct {
	v *viper.Viper
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	return v
}

// NewViper reads the file at pathFile, with its format taken from the
// extension, and reloads it whenever the file changes on disk.
func NewViper(pathFile string) (*Viper, error) {
	v := newViper()
	v.SetConfigFile(pathFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", pathFile, err)
	}

	v.OnConfigChange(func(ev fsnotify.Event) {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
			return
		}
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", pathFile, "error", err)
			return
		}
		slog.Info("config reloaded", "path", pathFile)
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes parses an in-memory document of configType, such as
// "yaml" or "json".
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse %s config: %w", configType, err)
	}

	return &Viper{v: v}, nil
}

func (vc *Viper) GetInt(key string) int         { return vc.v.GetInt(key) }
func (vc *Viper) GetInt32(key string) int32     { return vc.v.GetInt32(key) }
func (vc *Viper) GetBool(key string) bool       { return vc.v.GetBool(key) }
func (vc *Viper) GetFloat64(key string) float64 { return vc.v.GetFloat64(key) }
func (vc *Viper) GetString(key string) string   { return vc.v.GetString(key) }

func (vc *Viper) GetSecond(key string) time.Duration { return vc.unit(key, time.Second) }
func (vc *Viper) GetMinute(key string) time.Duration { return vc.unit(key, time.Minute) }

func (vc *Viper) unit(key string, d time.Duration) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * d
}

// GetBinary returns the value for key decoded from base64.
func (vc *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(vc.v.GetString(key))
	if err != nil {
		return nil
	}

	return data
}

// GetArray returns the value for key split by commas, dropping blank elements.
//
// YAML sequences are accepted as well as comma separated strings.
func (vc *Viper) GetArray(key string) []string {
	var raw []string
	if _, isList := vc.v.Get(key).([]any); isList {
		raw = vc.v.GetStringSlice(key)
	} else {
		raw = strings.Split(vc.v.GetString(key), ",")
	}

	trimmed := lo.Map(raw, func(item string, _ int) string { return strings.TrimSpace(item) })
	return lo.Compact(trimmed)
}

// Close is a no-op; the file watcher lives as long as the process.
func (vc *Viper) Close() error {
	return nil
}
