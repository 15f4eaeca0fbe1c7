package weather

// Condition describes the display treatment for a WMO weather code.
type Condition struct {
	Label     string `json:"label"`
	DayIcon   string `json:"dayIcon"`
	NightIcon string `json:"nightIcon"`
}

// conditions maps WMO weather interpretation codes to display entries.
var conditions = map[int]Condition{
	0:  {Label: "Clear sky", DayIcon: "sun", NightIcon: "moon"},
	1:  {Label: "Mainly clear", DayIcon: "sun", NightIcon: "moon"},
	2:  {Label: "Partly cloudy", DayIcon: "cloud-sun", NightIcon: "cloud-moon"},
	3:  {Label: "Overcast", DayIcon: "cloud", NightIcon: "cloud"},
	45: {Label: "Fog", DayIcon: "fog", NightIcon: "fog"},
	48: {Label: "Depositing rime fog", DayIcon: "fog", NightIcon: "fog"},
	51: {Label: "Light drizzle", DayIcon: "drizzle", NightIcon: "drizzle"},
	53: {Label: "Moderate drizzle", DayIcon: "drizzle", NightIcon: "drizzle"},
	55: {Label: "Dense drizzle", DayIcon: "drizzle", NightIcon: "drizzle"},
	56: {Label: "Light freezing drizzle", DayIcon: "sleet", NightIcon: "sleet"},
	57: {Label: "Dense freezing drizzle", DayIcon: "sleet", NightIcon: "sleet"},
	61: {Label: "Slight rain", DayIcon: "rain", NightIcon: "rain"},
	63: {Label: "Moderate rain", DayIcon: "rain", NightIcon: "rain"},
	65: {Label: "Heavy rain", DayIcon: "rain", NightIcon: "rain"},
	66: {Label: "Light freezing rain", DayIcon: "sleet", NightIcon: "sleet"},
	67: {Label: "Heavy freezing rain", DayIcon: "sleet", NightIcon: "sleet"},
	71: {Label: "Slight snowfall", DayIcon: "snow", NightIcon: "snow"},
	73: {Label: "Moderate snowfall", DayIcon: "snow", NightIcon: "snow"},
	75: {Label: "Heavy snowfall", DayIcon: "snow", NightIcon: "snow"},
	77: {Label: "Snow grains", DayIcon: "snow", NightIcon: "snow"},
	80: {Label: "Slight rain showers", DayIcon: "showers", NightIcon: "showers"},
	81: {Label: "Moderate rain showers", DayIcon: "showers", NightIcon: "showers"},
	82: {Label: "Violent rain showers", DayIcon: "showers", NightIcon: "showers"},
	85: {Label: "Slight snow showers", DayIcon: "snow", NightIcon: "snow"},
	86: {Label: "Heavy snow showers", DayIcon: "snow", NightIcon: "snow"},
	95: {Label: "Thunderstorm", DayIcon: "storm", NightIcon: "storm"},
	96: {Label: "Thunderstorm with slight hail", DayIcon: "storm", NightIcon: "storm"},
	99: {Label: "Thunderstorm with heavy hail", DayIcon: "storm", NightIcon: "storm"},
}

// defaultCondition is used for codes outside the known set.
var defaultCondition = Condition{Label: "Overcast", DayIcon: "cloud", NightIcon: "cloud"}

// ConditionFor returns the display entry for a WMO weather code. Unknown
// codes fall back to the overcast entry.
func ConditionFor(code int) Condition {
	if c, ok := conditions[code]; ok {
		return c
	}
	return defaultCondition
}
