// defaults.go default configuration values
package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig sets default values for the configuration
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "artstore")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/artstore.log")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)

	viper.SetDefault("database.sqlite.enabled", true)
	viper.SetDefault("database.sqlite.path", "artstore.db")

	viper.SetDefault("database.mysql.enabled", false)
	viper.SetDefault("database.mysql.username", "artstore")
	viper.SetDefault("database.mysql.password", "artstore")
	viper.SetDefault("database.mysql.database", "artstore")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")
}
