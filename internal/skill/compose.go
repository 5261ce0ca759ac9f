package skill

import (
	"fmt"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/alisadev/weather-skill/internal/meteo"
)

// User-facing phrases for the degraded turn outcomes.
const (
	textAskCity            = "Пожалуйста, укажите город, чтобы я могла сообщить погоду."
	textCityNotUnderstood  = "Город не указан. Попробуйте ещё раз."
	textWeatherUnavailable = "Не удалось получить данные о погоде. Попробуйте позже."
	textAirUnavailable     = "Данные о качестве воздуха недоступны."
)

const valueUnavailable = "н/д"

// capitalizeFirst uppercases the first letter and leaves the rest unchanged.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// temperaturePhrase renders the temperature sentence. Both non-zero branches
// use the mathematical floor of the temperature, so -2.3 comes out as
// "минус -3°C". Intentional, see DESIGN.md.
func temperaturePhrase(temp float64) string {
	switch {
	case temp > 0:
		return fmt.Sprintf("На улице плюс %d°C.", int(math.Floor(temp)))
	case temp == 0:
		return "На улице ровно ноль градусов."
	default:
		return fmt.Sprintf("На улице минус %d°C.", int(math.Floor(temp)))
	}
}

// formatPercent renders an optional percent value.
func formatPercent(v *int) string {
	if v == nil {
		return valueUnavailable
	}
	return strconv.Itoa(*v)
}

// formatPM25 renders a PM2.5 concentration with no trailing zeros.
func formatPM25(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// composeText assembles the full response sentence for a successful weather
// fetch. pm25 of nil degrades to the air-unavailable clause.
func composeText(cityPrepositional string, cond *meteo.CurrentConditions, pm25 *float64) string {
	text := fmt.Sprintf("В %s %s. %s ",
		cityPrepositional,
		capitalizeFirst(meteo.Condition(cond.WeatherCode)),
		temperaturePhrase(cond.Temperature),
	)
	text += fmt.Sprintf("Ветер %s, %d м/с. Влажность: %s%%, облачность: %s%%. ",
		meteo.WindDirection(cond.WindDirection),
		cond.WindSpeed,
		formatPercent(cond.Humidity),
		formatPercent(cond.CloudCover),
	)

	if pm25 != nil {
		text += fmt.Sprintf("Качество воздуха: %s (PM две целых пять десятых равен %s мкг/м³).",
			meteo.AirQualityCategory(*pm25), formatPM25(*pm25))
	} else {
		text += textAirUnavailable
	}

	return text
}
