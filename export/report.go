package export

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
)

const (
	organizationBrand = "CAMPUPRO ENGLISH"
	noValue           = "—"
	defaultStages     = "Standard Process"
)

type reportRow struct {
	Label string
	Score string
	Max   int
}

type reportData struct {
	Title        string
	Badge        string
	Averaged     bool
	Brand        string
	IdentityCode string
	Name         string
	EnName       string
	Organization string
	Group        string
	GroupIndex   string
	Category     string
	Date         string
	Stages       string
	Rows         []reportRow
	Total        string
	MaxTotal     int
	Feedback     string
}

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

// RenderSubmissionReport writes one judge's scoring sheet as a standalone page.
func RenderSubmissionReport(w io.Writer, s scoring.Submission) error {
	date := scoring.ParseTimestamp(s.LastUpdated)
	data := reportData{
		Title:        "Teacher Evaluation System",
		Badge:        "Evaluation Entry",
		IdentityCode: submissionCode(s),
		Name:         s.Name,
		EnName:       orDash(s.EnName),
		Organization: orDash(s.Organization),
		Group:        s.Group,
		GroupIndex:   s.GroupIndex,
		Category:     string(s.Category),
		Date:         formatDate(date),
		Stages:       joinStages(s.SelectedStages),
		Total:        strconv.Itoa(s.TotalScore),
		Feedback:     s.Feedback,
	}
	for _, c := range scoring.Criteria() {
		data.Rows = append(data.Rows, reportRow{Label: criterionTitle(c), Score: strconv.Itoa(s.Scores[c.ID]), Max: c.Max})
	}
	return render(w, data)
}

// RenderFinalReport writes the operator-approved result of one candidate.
func RenderFinalReport(w io.Writer, f scoring.FinalCandidate, at time.Time) error {
	data := reportData{
		Title:        "Final Assessment Report",
		Badge:        "Averaged Report",
		Averaged:     true,
		IdentityCode: string(f.Key),
		Name:         f.Name,
		EnName:       orDash(f.EnName),
		Organization: orDash(f.Organization),
		Group:        f.Group,
		GroupIndex:   f.GroupIndex,
		Category:     string(f.Category),
		Date:         formatDate(at),
		Stages:       joinStages(f.Stages),
		Total:        fmt.Sprintf("%.1f", f.Total),
		Feedback:     f.Feedback,
	}
	for _, c := range scoring.Criteria() {
		data.Rows = append(data.Rows, reportRow{
			Label: criterionTitle(c),
			Score: strconv.FormatFloat(f.Averages[c.ID], 'f', -1, 64),
			Max:   c.Max,
		})
	}
	return render(w, data)
}

func render(w io.Writer, data reportData) error {
	data.Brand = organizationBrand
	data.MaxTotal = scoring.MaxTotal
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render %s: %w", data.Title, err)
	}
	return nil
}

// SubmissionReportFilename is "<key>-<name>.html".
func SubmissionReportFilename(s scoring.Submission) string {
	return safeFilename(submissionCode(s)) + ".html"
}

// FinalReportFilename is "Final_Report_<key>_<name>.html".
func FinalReportFilename(f scoring.FinalCandidate) string {
	return safeFilename(fmt.Sprintf("Final_Report_%s_%s", f.Key, f.Name)) + ".html"
}

func submissionCode(s scoring.Submission) string {
	name := s.Name
	if name == "" {
		name = scoring.UnnamedCandidate
	}
	return fmt.Sprintf("%s-%s", s.Key(), name)
}

func criterionTitle(c scoring.Criterion) string {
	title, _, _ := strings.Cut(c.Point, ":")
	return title
}

func joinStages(stages []string) string {
	if len(stages) == 0 {
		return defaultStages
	}
	return strings.Join(stages, "  •  ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return noValue
	}
	return t.Format("2006-01-02")
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return noValue
	}
	return v
}

var filenameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\"", "", ":", "_", "\n", " ", "\r", "")

func safeFilename(name string) string {
	return filenameReplacer.Replace(name)
}

const reportHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<title>{{.IdentityCode}} - {{.Title}}</title>
<style>
* { box-sizing: border-box; }
body { font-family: -apple-system, "Segoe UI", Roboto, Arial, "Noto Sans SC", sans-serif; color: #334155; line-height: 1.5; margin: 0; padding: 60px 20px; display: flex; justify-content: center; }
body.entry { --accent: #0ea5e9; }
body.averaged { --accent: #4f46e5; }
.container { max-width: 800px; width: 100%; }
header { border-bottom: 2px solid #1e293b; padding-bottom: 30px; margin-bottom: 50px; position: relative; }
.badge { position: absolute; right: 0; top: 0; background: var(--accent); color: #fff; padding: 6px 16px; border-radius: 4px; font-size: 12px; font-weight: 800; text-transform: uppercase; }
h1 { margin: 0; font-size: 28px; color: #1e293b; }
.brand { font-size: 14px; font-weight: 700; color: #94a3b8; letter-spacing: 0.2em; }
.profile { display: grid; grid-template-columns: repeat(3, 1fr); gap: 30px; margin-bottom: 60px; background: #f8fafc; padding: 40px; border-radius: 12px; }
.code { grid-column: span 3; font-size: 24px; font-weight: 900; color: var(--accent); border-bottom: 1px solid #e2e8f0; padding-bottom: 15px; }
.wide { grid-column: span 3; }
.label { display: block; font-size: 11px; font-weight: 800; color: #94a3b8; text-transform: uppercase; margin-bottom: 8px; }
.value { font-size: 16px; font-weight: 700; color: #1e293b; }
table { width: 100%; border-collapse: collapse; margin-bottom: 60px; }
th { text-align: left; padding: 15px 0; border-bottom: 2px solid #1e293b; font-size: 12px; }
td { padding: 20px 0; border-bottom: 1px solid #f1f5f9; font-size: 15px; }
.score { text-align: right; font-weight: 700; }
.max { color: #94a3b8; font-weight: 400; font-size: 13px; margin-left: 5px; }
.total { text-align: right; background: var(--accent); color: #fff; padding: 20px 30px; border-radius: 8px; font-size: 36px; font-weight: 900; }
.feedback { white-space: pre-wrap; font-size: 16px; color: #475569; line-height: 1.8; padding-left: 25px; border-left: 3px solid #e2e8f0; }
footer { margin-top: 100px; padding-top: 40px; border-top: 1px solid #e2e8f0; text-align: center; font-size: 12px; color: #94a3b8; }
@media print { body { padding: 0; } .profile, .total { -webkit-print-color-adjust: exact; } }
</style>
</head>
<body class="{{if .Averaged}}averaged{{else}}entry{{end}}">
<div class="container">
<header>
<div class="badge">{{.Badge}}</div>
<h1>{{.Title}}</h1>
<div class="brand">{{.Brand}}</div>
</header>
<div class="profile">
<div class="code">ID: {{.IdentityCode}}</div>
<div><span class="label">Full Name</span><span class="value">{{.Name}}</span></div>
<div><span class="label">English Name</span><span class="value">{{.EnName}}</span></div>
<div><span class="label">Organization</span><span class="value">{{.Organization}}</span></div>
<div><span class="label">Group / No.</span><span class="value">{{.Group}} - {{.GroupIndex}}</span></div>
<div><span class="label">Framework</span><span class="value">{{.Category}}</span></div>
<div><span class="label">Report Date</span><span class="value">{{.Date}}</span></div>
<div class="wide"><span class="label">Teaching Stages</span><span class="value">{{.Stages}}</span></div>
</div>
<table>
<thead><tr><th>Evaluation Dimension</th><th style="text-align: right;">Score</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Label}}</td><td class="score">{{.Score}}<span class="max">/ {{.Max}}</span></td></tr>
{{end}}<tr><td><strong>Total</strong></td><td><div class="total">{{.Total}}<span class="max">/ {{.MaxTotal}}</span></div></td></tr>
</tbody>
</table>
<section>
<h2 class="label">Feedback</h2>
<div class="feedback">{{.Feedback}}</div>
</section>
<footer>{{.Brand}}</footer>
</div>
</body>
</html>
`
