package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Page is the chrome shared by every full page.
type Page struct {
	Title  string
	Active string
	Theme  string
}

// KPIView is one formatted indicator with its change against the
// preceding period. Delta and DeltaPercent are empty when there is no
// previous period to compare against.
type KPIView struct {
	Label        string
	Value        string
	Delta        string
	DeltaPercent string
	Direction    string
}

// LatestCard is the latest-period block for one granularity.
type LatestCard struct {
	Granularity   string
	Label         string
	PreviousLabel string
	Count         int
	KPIs          []KPIView
}

// StatRow is one row of the column statistics table.
type StatRow struct {
	Column string
	Count  int
	Mean   string
	Std    string
	Min    string
	Max    string
}

// HomeData is the view model for the landing page.
type HomeData struct {
	Page
	Err      string
	Rows     int
	From     string
	To       string
	LoadedAt string
	DataPath string
	Metric   string
	Cards    []LatestCard
	Stats    []StatRow
}

func RenderHome(w io.Writer, data *HomeData) error {
	if dashboardTmpl == nil {
		return errors.New("home template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "home.html", data)
}

// FilterOptions drives the explorer form.
type FilterOptions struct {
	Metrics       []string
	Metric        string
	Granularities []string
	Granularity   string
	From          string
	To            string
	MinDate       string
	MaxDate       string
}

// SeriesRow is one aggregated bucket formatted for the results table.
type SeriesRow struct {
	Bucket string
	Min    string
	Mean   string
	Max    string
	Count  int
}

// ResultsData is the explorer results fragment: summary cards, the
// latest complete period strip, chart parameters and the aggregated
// table.
type ResultsData struct {
	Err           string
	Metric        string
	Granularity   string
	From          string
	To            string
	RangeLabel    string
	Color         string
	Count         int
	PreviousCount int
	KPIs          []KPIView
	Latest        *LatestCard
	Rows          []SeriesRow
}

// ExploreData is the view model for the explorer page.
type ExploreData struct {
	Page
	Filters FilterOptions
	Results ResultsData
}

func RenderExplore(w io.Writer, data *ExploreData) error {
	if dashboardTmpl == nil {
		return errors.New("explore template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "explore.html", data)
}

// RenderResultsPartial executes only the results fragment into w.
// Use for HTMX fragment refresh.
func RenderResultsPartial(w io.Writer, data *ResultsData) error {
	if dashboardTmpl == nil {
		return errors.New("results template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/results.html", data)
}

// PreviewRow is one raw reading formatted for the prediction preview.
type PreviewRow struct {
	Timestamp   string
	P0          string
	P1          string
	P2          string
	Temperature string
	Humidity    string
}

// PredictData is the view model for the prediction page. The preview
// block mirrors what a trained model would see: row count, covered
// period, columns, per-column statistics and the first rows.
type PredictData struct {
	Page
	Err     string
	Metrics []string
	Metric  string
	Horizon int
	Rows    int
	From    string
	To      string
	Columns []string
	Stats   []StatRow
	Preview []PreviewRow
}

func RenderPredict(w io.Writer, data *PredictData) error {
	if dashboardTmpl == nil {
		return errors.New("predict template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "predict.html", data)
}
