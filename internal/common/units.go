package common

// CelsiusToFahrenheit converts a temperature in °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// KphToMph converts a speed in kilometres per hour to miles per hour.
func KphToMph(kph float64) float64 {
	return kph * 0.621371
}
