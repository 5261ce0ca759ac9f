package meteo

import "math"

// weatherConditions maps Open-Meteo WMO weather codes to Russian condition
// phrases. The table is a closed vocabulary: unknown codes fall through to
// conditionUnknown.
var weatherConditions = map[int]string{
	0:  "ясно",
	1:  "преимущественно ясно",
	2:  "переменная облачность",
	3:  "пасмурно",
	45: "туман",
	48: "туман с инеем",
	51: "легкая морось",
	53: "умеренная морось",
	55: "сильная морось",
	56: "легкая ледяная морось",
	57: "сильная ледяная морось",
	61: "небольшой дождь",
	63: "умеренный дождь",
	65: "сильный дождь",
	66: "ледяной дождь",
	67: "сильный ледяной дождь",
	71: "небольшой снег",
	73: "умеренный снег",
	75: "сильный снег",
	77: "снежные зерна",
	80: "небольшие ливни",
	81: "умеренные ливни",
	82: "сильные ливни",
	85: "небольшой снегопад",
	86: "сильный снегопад",
	95: "гроза",
	96: "гроза с небольшим градом",
	99: "гроза с сильным градом",
}

const conditionUnknown = "неизвестные условия"

// Condition returns the Russian condition phrase for a weather code.
func Condition(code int) string {
	if c, ok := weatherConditions[code]; ok {
		return c
	}
	return conditionUnknown
}

// airQualityBand is one step of the PM2.5 classification: the inclusive upper
// bound of the band and its label.
type airQualityBand struct {
	upTo  float64
	label string
}

var airQualityBands = []airQualityBand{
	{12, "хорошее"},
	{35, "умеренное"},
	{55, "нездоровое для чувствительных групп"},
	{150, "нездоровое"},
	{250, "очень нездоровое"},
}

const airQualityHazardous = "опасное"

// AirQualityCategory classifies a PM2.5 concentration (µg/m³) into one of six
// severity labels. Total over all inputs; band upper bounds are inclusive.
func AirQualityCategory(pm25 float64) string {
	for _, b := range airQualityBands {
		if pm25 <= b.upTo {
			return b.label
		}
	}
	return airQualityHazardous
}

var windDirections = [8]string{
	"северный",
	"северо-восточный",
	"восточный",
	"юго-восточный",
	"южный",
	"юго-западный",
	"западный",
	"северо-западный",
}

const windDirectionUnknown = "неизвестное направление"

// WindDirection maps a compass bearing in degrees to one of eight named
// directions, rounding to the nearest 45° sector. 360 wraps back to north;
// values outside [0, 360] yield windDirectionUnknown.
func WindDirection(degrees float64) string {
	if degrees < 0 || degrees > 360 {
		return windDirectionUnknown
	}
	idx := int(math.Round(degrees/45)) % 8
	return windDirections[idx]
}
