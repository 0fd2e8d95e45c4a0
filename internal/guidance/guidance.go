// Package guidance turns a forecast yield and a live market snapshot into
// refinancing guidance. Everything here is pure: no I/O, no clocks.
package guidance

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// Thresholds, in percent. Comparisons are strict greater-than, so a value
// equal to a threshold falls in the lower band.
const (
	HighYieldThreshold      = 5.0
	StableYieldThreshold    = 4.0
	ElevatedSpreadThreshold = 2.0

	AlertHighThreshold = 5.0
	AlertLowThreshold  = 3.5
)

// ErrUnavailable is returned when there is not enough data to evaluate.
var ErrUnavailable = errors.New("guidance unavailable")

// Severity mirrors the display tone of a message.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// YieldBand classifies the forecast yield.
type YieldBand string

const (
	BandHigh      YieldBand = "high"
	BandStable    YieldBand = "stable"
	BandFavorable YieldBand = "favorable"
)

// SpreadBand classifies the live rate-minus-yield spread.
type SpreadBand string

const (
	SpreadElevated SpreadBand = "elevated"
	SpreadNormal   SpreadBand = "normal"
)

// Message is one piece of displayable guidance.
type Message struct {
	Severity Severity `json:"severity"`
	Headline string   `json:"headline"`
	Detail   string   `json:"detail,omitempty"`
}

// Guidance holds both ladder outcomes and the numbers behind them.
type Guidance struct {
	ForecastYield float64    `json:"forecast_yield"`
	LiveYield     float64    `json:"live_yield"`
	LiveRate      float64    `json:"live_rate"`
	Spread        float64    `json:"spread"`
	YieldBand     YieldBand  `json:"yield_band"`
	SpreadBand    SpreadBand `json:"spread_band"`
	Yield         Message    `json:"yield_message"`
	SpreadNote    Message    `json:"spread_message"`
}

// Evaluate applies the yield ladder to forecastYield and the spread ladder
// to the snapshot. It returns ErrUnavailable when either live value is
// absent or the forecast yield is NaN.
func Evaluate(forecastYield float64, snap models.MarketSnapshot) (Guidance, error) {
	if missing := snap.Missing(); len(missing) > 0 {
		return Guidance{}, fmt.Errorf("%w: live %s missing", ErrUnavailable, strings.Join(missing, " and "))
	}
	if math.IsNaN(forecastYield) {
		return Guidance{}, fmt.Errorf("%w: forecast yield missing", ErrUnavailable)
	}

	g := Guidance{
		ForecastYield: forecastYield,
		LiveYield:     snap.Yield.Value,
		LiveRate:      snap.Rate.Value,
		Spread:        utils.Spread(snap.Rate.Value, snap.Yield.Value),
	}
	g.YieldBand, g.Yield = yieldLadder(forecastYield)
	g.SpreadBand, g.SpreadNote = spreadLadder(g.Spread)
	return g, nil
}

func yieldLadder(y float64) (YieldBand, Message) {
	switch {
	case y > HighYieldThreshold:
		return BandHigh, Message{
			Severity: SeverityError,
			Headline: "Forecasted 10Y yield is above 5%.",
			Detail:   "Mortgage rates may increase. Consider delaying unless urgent.",
		}
	case y > StableYieldThreshold:
		return BandStable, Message{
			Severity: SeverityWarning,
			Headline: "Forecasted 10Y yield is between 4% and 5%.",
			Detail:   "Rates are stable. Lock only if timing matters.",
		}
	default:
		return BandFavorable, Message{
			Severity: SeveritySuccess,
			Headline: "Forecasted 10Y yield is below 4%.",
			Detail:   "Consider locking or refinancing now to capture lower rates.",
		}
	}
}

func spreadLadder(spread float64) (SpreadBand, Message) {
	if spread > ElevatedSpreadThreshold {
		return SpreadElevated, Message{
			Severity: SeverityWarning,
			Headline: "Mortgage rates are elevated due to a higher-than-normal spread.",
			Detail:   "Lenders are pricing in a risk premium; rates may come down even if Treasury yields stay flat.",
		}
	}
	return SpreadNormal, Message{
		Severity: SeveritySuccess,
		Headline: "Spread is within normal range.",
		Detail:   "Mortgage pricing aligns with historical expectations.",
	}
}

// Messages returns the yield and spread messages in display order.
func (g Guidance) Messages() []Message {
	return []Message{g.Yield, g.SpreadNote}
}

// String renders both outcomes on one line.
func (g Guidance) String() string {
	return fmt.Sprintf("%s %s Spread %s (%s). %s",
		g.Yield.Headline, g.Yield.Detail,
		utils.FormatPercent(g.Spread), g.SpreadBand, g.SpreadNote.Headline)
}

// ForecastAlert classifies the most recent forecast yield. ok is false when
// the yield is NaN.
func ForecastAlert(lastYield float64) (msg Message, ok bool) {
	switch {
	case math.IsNaN(lastYield):
		return Message{
			Severity: SeverityInfo,
			Headline: "Forecast alerts will appear once the 10Y Treasury yield forecast is loaded.",
		}, false
	case lastYield > AlertHighThreshold:
		return Message{
			Severity: SeverityWarning,
			Headline: "10Y yield is projected above 5%.",
			Detail:   "Mortgage rates may rise; refinancing could become less favorable.",
		}, true
	case lastYield < AlertLowThreshold:
		return Message{
			Severity: SeveritySuccess,
			Headline: "10Y yield is projected below 3.5%.",
			Detail:   "Mortgage rates may drop; consider locking in refinancing.",
		}, true
	default:
		return Message{
			Severity: SeverityInfo,
			Headline: "Mortgage rates are expected to remain stable in the near term.",
		}, true
	}
}
