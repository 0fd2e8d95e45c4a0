package market

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagewatch/internal/provider"
)

// Sections name the independent data paths a warning can belong to.
const (
	SectionRate        = "rate"
	SectionYield       = "yield"
	SectionPlaceLabor  = "labor.places"
	SectionCountyLabor = "labor.counties"
	SectionForecast    = "forecast"
	SectionGuidance    = "guidance"
)

// Warning is a non-fatal, source-attributed failure shown next to the
// section it degraded.
type Warning struct {
	Section string `json:"section"`
	Source  string `json:"source,omitempty"` // provider name when known
	Kind    string `json:"kind,omitempty"`   // see provider.KindName
	Message string `json:"message"`
}

// NewWarning describes err as a warning for section.
func NewWarning(section string, err error) Warning {
	return Warning{
		Section: section,
		Source:  provider.SourceOf(err),
		Kind:    provider.KindName(err),
		Message: err.Error(),
	}
}

// Reporter receives warnings. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Report(w Warning)
}

// Collector accumulates warnings in arrival order.
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
}

// Report implements Reporter.
func (c *Collector) Report(w Warning) {
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()
}

// Warnings returns a copy of everything reported so far.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// LogReporter writes each warning to the standard logger at warn level.
type LogReporter struct{}

// Report implements Reporter.
func (LogReporter) Report(w Warning) {
	log.WithFields(log.Fields{
		"section": w.Section,
		"source":  w.Source,
		"kind":    w.Kind,
	}).Warn(w.Message)
}

// Tee fans each warning out to every reporter.
type Tee []Reporter

// Report implements Reporter.
func (t Tee) Report(w Warning) {
	for _, r := range t {
		r.Report(w)
	}
}
