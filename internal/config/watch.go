package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"jarvis/internal/logger"
)

// Watch re-reads the config file on change and hands the new log level to
// onLevel. Only app.log_level is hot-reloadable; risk and strategy values are
// fixed for the lifetime of the process.
func Watch(path string, onLevel func(level string)) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path cannot be empty")
	}
	if onLevel == nil {
		onLevel = logger.SetLevel
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
			return
		}
		level := strings.TrimSpace(v.GetString("app.log_level"))
		if level == "" {
			level = defaultAppLogLevel
		}
		logger.Infof("config change detected (%s), log_level=%s", evt.Name, level)
		onLevel(level)
	})
	v.WatchConfig()
	return nil
}
