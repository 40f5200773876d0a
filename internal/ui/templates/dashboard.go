// Package templates holds the dashboard page components. The components are
// written in dashboard.templ; run `templ generate` after editing it.
package templates

const (
	Title    = "Bike Sales Dashboard"
	Subtitle = "Revenue, volume and seasonality over complete years of sales"
)

// Chart is one image panel backed by /charts/{View}.png.
type Chart struct {
	View    string
	Heading string
}

func (c Chart) Src() string {
	return "/charts/" + c.View + ".png"
}

var Charts = []Chart{
	{View: "revenue_by_year", Heading: "Revenue by Year"},
	{View: "revenue_by_month", Heading: "Revenue by Month"},
	{View: "revenue_by_country", Heading: "Revenue by Country"},
	{View: "revenue_by_gender", Heading: "Revenue by Customer Gender"},
	{View: "top_products", Heading: "Top Products by Order Volume"},
	{View: "seasonality", Heading: "Seasonality of the Leading Countries"},
}

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6f8;color:#1f2933}
.dashboard{max-width:1200px;margin:0 auto;padding:1.5rem}
.subtitle{color:#52606d;margin-top:-.5rem}
.grid{display:grid;grid-template-columns:repeat(auto-fit,minmax(480px,1fr));gap:1rem}
.panel{background:#fff;border-radius:8px;padding:1rem;margin:1rem 0;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.chart{width:100%;height:auto}
.modern-table{width:100%;border-collapse:collapse}
.modern-table th,.modern-table td{padding:.4rem .6rem;border-bottom:1px solid #e4e7eb;text-align:right}
.modern-table th:first-child,.modern-table td:first-child{text-align:left}
.notice.error{color:#b42318}.notice.info{color:#52606d}
`
