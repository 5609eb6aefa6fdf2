// conf/consts.go hard coded constants
package conf

// Twilight depth names accepted for advanced.twilighttype.
const (
	TwilightCivil        = "civil"        // sun 6 degrees below the horizon
	TwilightNautical     = "nautical"     // sun 12 degrees below the horizon
	TwilightAstronomical = "astronomical" // sun 18 degrees below the horizon
)

// Window resolution method names recorded on resolved night windows.
const (
	MethodAstronomical = "astronomical" // window computed from dusk and dawn
	MethodStatic       = "static"       // window built from fixed clock times
	MethodFallback     = "fallback"     // static times used because twilight computation failed
)
