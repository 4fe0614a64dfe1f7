package services

import "strings"

// cityAirports maps lower-case city names to the IATA code of their main airport.
var cityAirports = map[string]string{
	"mumbai":       "BOM",
	"delhi":        "DEL",
	"bangalore":    "BLR",
	"chennai":      "MAA",
	"kolkata":      "CCU",
	"hyderabad":    "HYD",
	"ahmedabad":    "AMD",
	"pune":         "PNQ",
	"goa":          "GOI",
	"jaipur":       "JAI",
	"lucknow":      "LKO",
	"cochin":       "COK",
	"trivandrum":   "TRV",
	"varanasi":     "VNS",
	"guwahati":     "GAU",
	"surat":        "STV",
	"ranchi":       "IXR",
	"bhopal":       "BHO",
	"chandigarh":   "IXC",
	"indore":       "IDR",
	"nagpur":       "NAG",
	"vadodara":     "BDQ",
	"bhubaneshwar": "BBI",
}

// AirportCode returns the airport code for a city, matching case-insensitively.
func AirportCode(city string) (string, bool) {
	code, ok := cityAirports[strings.ToLower(strings.TrimSpace(city))]
	return code, ok
}
