// validate.go settings validation
package conf

import (
	"github.com/tmattila/artstore-go/internal/errors"
)

// ValidateSettings checks the loaded settings for configuration mistakes the
// rest of the application cannot recover from.
func ValidateSettings(settings *Settings) error {
	if settings.Database.SQLite.Enabled && settings.Database.MySQL.Enabled {
		return errors.Newf("only one database backend may be enabled at a time").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if !settings.Database.SQLite.Enabled && !settings.Database.MySQL.Enabled {
		return errors.Newf("no database backend enabled, enable either sqlite or mysql").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if settings.Database.SQLite.Enabled && settings.Database.SQLite.Path == "" {
		return errors.Newf("database.sqlite.path must not be empty").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("setting", "database.sqlite.path").
			Build()
	}

	if settings.Database.MySQL.Enabled {
		if settings.Database.MySQL.Host == "" || settings.Database.MySQL.Database == "" {
			return errors.Newf("mysql backend requires host and database name").
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
	}

	if settings.WebServer.Enabled && settings.WebServer.Port == "" {
		return errors.Newf("webserver.port must not be empty").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("setting", "webserver.port").
			Build()
	}

	return nil
}
