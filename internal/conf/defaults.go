// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "fox-report")

	viper.SetDefault("location.latitude", 0.000)
	viper.SetDefault("location.longitude", 0.000)
	viper.SetDefault("location.elevation", 0.0)
	viper.SetDefault("location.timezone", "")

	viper.SetDefault("statictimes.enabled", false)
	viper.SetDefault("statictimes.starttime", "")
	viper.SetDefault("statictimes.endtime", "")

	viper.SetDefault("advanced.twilighttype", TwilightCivil)
	viper.SetDefault("advanced.bufferminutes", 15)

	viper.SetDefault("nights.count", 3)

	viper.SetDefault("database.path", "/opt/frigate/media/frigate.db")
	viper.SetDefault("database.busytimeoutms", 5000)

	viper.SetDefault("frigate.host", "")
	viper.SetDefault("frigate.label", "fox")
	viper.SetDefault("frigate.cameras", []string{})
	viper.SetDefault("frigate.timeline", false)
	viper.SetDefault("frigate.verifyclips", false)

	viper.SetDefault("report.outputdir", "/tmp")
	viper.SetDefault("report.topevents", 5)
	viper.SetDefault("report.htmlevents", 10)

	viper.SetDefault("email.enabled", false)
	viper.SetDefault("email.smtp.host", "smtp.gmail.com")
	viper.SetDefault("email.smtp.port", 587)
	viper.SetDefault("email.smtp.username", "")
	viper.SetDefault("email.smtp.password", "")
	viper.SetDefault("email.from", "")
	viper.SetDefault("email.to", []string{})
	viper.SetDefault("email.html", true)

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "fox-report/summary")
	viper.SetDefault("mqtt.clientid", "fox-report")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.retain", true)

	viper.SetDefault("log.enabled", true)
	viper.SetDefault("log.path", "logs/fox-report.log")
	viper.SetDefault("log.rotation", RotationDaily)
	viper.SetDefault("log.maxsize", 10485760)
	viper.SetDefault("log.rotationday", time.Sunday.String())
}
