// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable that overrides a config key.
	EnvPrefix = "MOMPICK"

	// JSONConfigEnv holds a complete JSON config document merged on top of the file.
	JSONConfigEnv = "MOMPICK_ADMIN_CONFIG_JSON"

	mainConfigFile = "main.toml"
)

// ReadConfig from config file.
//
// A .env file in the working directory is loaded first, so secrets can be kept
// out of the TOML file and injected as MOMPICK_<SECTION>_<KEY> variables.
func ReadConfig(path string) (Config, error) {
	var (
		c          Config
		jsonConfig string
		err        error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	// a missing .env is fine, most deployments inject env directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, mainConfigFile))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	jsonConfig = os.Getenv(JSONConfigEnv)

	if jsonConfig != "" {
		c, err = decodeAndMergeConfig(c, jsonConfig)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "MomPick Admin")
	v.SetDefault("db.gormengine", EnginePostgres)
	v.SetDefault("webserver.shutdowntime", defaultShutDownTime)
	v.SetDefault("webserver.session.expirytime", DefaultSessionExpiry)
	v.SetDefault("webserver.session.cookiename", DefaultCookieName)
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("push.provider", PushNone)
	v.SetDefault("push.fcm.endpoint", DefaultFCMEndpoint)
	v.SetDefault("dispatcher.enabled", true)
	v.SetDefault("dispatcher.cronspec", DefaultCronSpec)
	v.SetDefault("dispatcher.batchsize", DefaultBatchSize)
	v.SetDefault("dispatcher.duplicatewindow", DefaultDuplicateWindow)
	v.SetDefault("opendata.kindergartenurl", DefaultKindergartenURL)
	v.SetDefault("opendata.childcareurl", DefaultChildcareURL)
	v.SetDefault("opendata.defaultarcode", DefaultArcode)
	v.SetDefault("opendata.requestspersecond", defaultRequestsPerSecond)
	v.SetDefault("opendata.timeout", defaultOpenDataTimeout)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", err //nolint: wrapcheck
	}

	return string(out), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// masked replaces a secret that is set.
const masked = "****"

// Masked returns a copy of c with passwords, keys and tokens hidden.
func Masked(c Config) Config {
	for _, s := range []*string{
		&c.DB.Password,
		&c.Admin.Password,
		&c.Admin.APIToken,
		&c.Storage.SecretAccessKey,
		&c.Push.FCM.CredentialsJSON,
		&c.OpenData.KindergartenKey,
		&c.OpenData.ChildcareKey,
	} {
		if *s != "" {
			*s = masked
		}
	}

	return c
}

// validate minimal config settings and fill in defaults for values
// a bare struct (tests, JSON-only configs) leaves empty.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = DefaultSessionExpiry
	}

	if c.Webserver.Session.CookieName == "" {
		c.Webserver.Session.CookieName = DefaultCookieName
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EnginePostgres
	case EnginePostgres, EngineMySQL, EngineSQLite:
	default:
		return errors.Wrapf(ErrUnknownGormEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = StorageMemory
	case StorageMemory, StorageS3:
	default:
		return errors.Wrapf(ErrUnknownStorageDriver, "%s: %q", invalidErrMessage, c.Storage.Driver)
	}

	switch c.Push.Provider {
	case "":
		c.Push.Provider = PushNone
	case PushNone, PushFCM, PushSNS:
	default:
		return errors.Wrapf(ErrUnknownPushProvider, "%s: %q", invalidErrMessage, c.Push.Provider)
	}

	if c.Push.Provider == PushFCM && c.Push.FCM.ProjectID == "" {
		return errors.Wrap(ErrFCMProjectIDEmpty, invalidErrMessage)
	}

	if c.Push.FCM.Endpoint == "" {
		c.Push.FCM.Endpoint = DefaultFCMEndpoint
	}

	if c.Dispatcher.BatchSize < 0 {
		return errors.Wrap(ErrBatchSizeNegative, invalidErrMessage)
	}

	if c.Dispatcher.BatchSize == 0 {
		c.Dispatcher.BatchSize = DefaultBatchSize
	}

	if c.Dispatcher.CronSpec == "" {
		c.Dispatcher.CronSpec = DefaultCronSpec
	}

	if c.Dispatcher.DuplicateWindow == 0 {
		c.Dispatcher.DuplicateWindow = DefaultDuplicateWindow
	}

	if c.OpenData.KindergartenURL == "" {
		c.OpenData.KindergartenURL = DefaultKindergartenURL
	}

	if c.OpenData.ChildcareURL == "" {
		c.OpenData.ChildcareURL = DefaultChildcareURL
	}

	if c.OpenData.DefaultArcode == "" {
		c.OpenData.DefaultArcode = DefaultArcode
	}

	if c.OpenData.RequestsPerSecond <= 0 {
		c.OpenData.RequestsPerSecond = defaultRequestsPerSecond
	}

	if c.OpenData.Timeout == 0 {
		c.OpenData.Timeout = defaultOpenDataTimeout
	}

	return nil
}
