package services

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"text/template"

	"reviews-mapper/models"
)

//go:embed report_template.txt
var reportTemplate string

// noData renders for any placeholder without a backing value.
const noData = "N/A"

// reportData is the template's view of a StatsReport: everything is a
// pre-formatted string, defaulting to N/A, so the template itself stays
// a pure fill.
type reportData struct {
	Date    string
	NObs    string
	NObs100 string

	MeanRating string
	MinRating  string
	FirstQtile string
	Median     string
	ThirdQtile string
	MaxRating  string

	Top      [5]string
	Bot      [5]string
	Pop      [5]string
	TopChain [5]string
	BotChain [5]string
}

// Reporter renders the fixed-format summary text.
type Reporter struct {
	tmpl *template.Template
}

// NewReporter parses the embedded report template.
func NewReporter() (*Reporter, error) {
	tmpl, err := template.New("summary").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("report: parse template: %w", err)
	}
	return &Reporter{tmpl: tmpl}, nil
}

// Render fills the template from the computed report. Missing values
// (an empty dataset, a short ranked list) come out as N/A, never blank.
func (r *Reporter) Render(report *models.StatsReport) (string, error) {
	data := reportData{
		Date:       report.GeneratedAt.Format("2006-01-02 15:04"),
		NObs:       strconv.Itoa(report.TotalPlaces),
		NObs100:    strconv.Itoa(report.ReviewedPlaces),
		MeanRating: noData,
		MinRating:  noData,
		FirstQtile: noData,
		Median:     noData,
		ThirdQtile: noData,
		MaxRating:  noData,
	}

	if report.HasRatingStats {
		data.MeanRating = formatRating(report.MeanRating)
		data.MinRating = formatRating(report.MinRating)
		data.FirstQtile = formatRating(report.FirstQuartile)
		data.Median = formatRating(report.Median)
		data.ThirdQtile = formatRating(report.ThirdQuartile)
		data.MaxRating = formatRating(report.MaxRating)
	}

	fillPlaces(&data.Top, report.TopRated)
	fillPlaces(&data.Bot, report.BottomRated)
	fillPlaces(&data.Pop, report.MostReviewed)
	fillChains(&data.TopChain, report.TopChains)
	fillChains(&data.BotChain, report.BottomChains)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("report: render: %w", err)
	}
	return buf.String(), nil
}

func fillPlaces(dst *[5]string, src []models.RankedPlace) {
	for i := range dst {
		if i < len(src) {
			p := src[i]
			dst[i] = fmt.Sprintf("%s - %s (%s, %d)",
				p.Name, p.Vicinity, formatRating(p.Rating), p.ReviewCount)
		} else {
			dst[i] = noData
		}
	}
}

func fillChains(dst *[5]string, src []models.ChainGroup) {
	for i := range dst {
		if i < len(src) {
			c := src[i]
			dst[i] = fmt.Sprintf("%s (%s, %d)",
				c.Name, formatRating(c.WeightedRating), c.TotalReviews)
		} else {
			dst[i] = noData
		}
	}
}

func formatRating(r float64) string {
	return strconv.FormatFloat(round2(r), 'f', -1, 64)
}
