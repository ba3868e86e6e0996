package rendering

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"unicode"

	"github.com/jonathan/jobfit/internal/types"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	resumeTemplate      = "resume.html.tmpl"
	coverLetterTemplate = "cover_letter.html.tmpl"
	stylesheet          = "templates/style.css"
)

var (
	templatesOnce sync.Once
	templates     *template.Template
	styleCSS      template.CSS
	templatesErr  error
)

func loadTemplates() (*template.Template, template.CSS, error) {
	templatesOnce.Do(func() {
		css, err := templateFiles.ReadFile(stylesheet)
		if err != nil {
			templatesErr = &TemplateError{Template: stylesheet, Message: "failed to read stylesheet", Cause: err}
			return
		}
		styleCSS = template.CSS(css)
		templates, err = template.New("documents").ParseFS(templateFiles, "templates/*.html.tmpl")
		if err != nil {
			templatesErr = &TemplateError{Template: "templates", Message: "failed to parse templates", Cause: err}
		}
	})
	return templates, styleCSS, templatesErr
}

// Input is everything a document is rendered from
type Input struct {
	Kind        types.DocumentKind
	Profile     *types.TailoredProfile
	Job         types.JobDetails
	CoverLetter *types.CoverLetter // required for cover letters
}

// Filename returns the download name for the input.
func (in Input) Filename() string {
	name := ""
	if in.Profile != nil {
		name = in.Profile.PersonalInfo.Name
	}
	return FilenameFor(in.Kind, in.Job, name)
}

type pageData struct {
	Style    template.CSS
	Name     string
	Headline string
	Contact  []string
	Job      types.JobDetails
}

type resumeData struct {
	pageData
	Summary    string
	Skills     []skillRow
	Companies  []companySection
	Education  []educationEntry
	Activities []activityEntry
}

type coverLetterData struct {
	pageData
	Greeting   string
	Paragraphs []string
	Closing    string
}

type skillRow struct {
	Label string
	Items string
}

// companySection groups consecutive roles held at the same company
type companySection struct {
	Company  string
	Location string
	Roles    []roleSection
}

type roleSection struct {
	Role         string
	Dates        string
	Achievements []string
}

type educationEntry struct {
	Institution string
	Degree      string
	Dates       string
	Details     []string
}

type activityEntry struct {
	Name        string
	Role        string
	Dates       string
	Description string
}

// RenderMarkup renders the preview HTML for a document. It makes no external
// calls, and identical inputs always produce identical output.
func RenderMarkup(in Input) (string, error) {
	if in.Profile == nil {
		return "", &TemplateError{Template: string(in.Kind), Message: "profile is required"}
	}
	tmpl, css, err := loadTemplates()
	if err != nil {
		return "", err
	}

	page := buildPageData(css, &in.Profile.CandidateProfile, in.Job)

	var (
		name string
		data any
	)
	switch in.Kind {
	case types.DocumentResume:
		name = resumeTemplate
		data = buildResumeData(page, &in.Profile.CandidateProfile)
	case types.DocumentCoverLetter:
		if in.CoverLetter == nil {
			return "", &TemplateError{Template: coverLetterTemplate, Message: "cover letter content is required"}
		}
		name = coverLetterTemplate
		data = coverLetterData{
			pageData:   page,
			Greeting:   in.CoverLetter.Greeting,
			Paragraphs: in.CoverLetter.Paragraphs,
			Closing:    in.CoverLetter.Closing,
		}
	default:
		return "", &TemplateError{Template: string(in.Kind), Message: fmt.Sprintf("unknown document kind %q", in.Kind)}
	}

	var out strings.Builder
	if err := tmpl.ExecuteTemplate(&out, name, data); err != nil {
		return "", &TemplateError{Template: name, Message: "failed to execute template", Cause: err}
	}
	return out.String(), nil
}

func buildPageData(css template.CSS, p *types.CandidateProfile, job types.JobDetails) pageData {
	info := p.PersonalInfo
	var contact []string
	for _, c := range []string{info.Email, info.Phone, info.Location, info.LinkedIn, info.Website} {
		if c = strings.TrimSpace(c); c != "" {
			contact = append(contact, c)
		}
	}
	return pageData{
		Style:    css,
		Name:     info.Name,
		Headline: info.Title,
		Contact:  contact,
		Job:      job,
	}
}

func buildResumeData(page pageData, p *types.CandidateProfile) resumeData {
	data := resumeData{
		pageData:  page,
		Summary:   p.Summary,
		Companies: groupByCompany(p.Experience),
	}

	for _, c := range p.Skills.Categories {
		if len(c.Skills) == 0 {
			continue
		}
		names := make([]string, 0, len(c.Skills))
		for _, s := range c.Skills {
			names = append(names, s.Name)
		}
		data.Skills = append(data.Skills, skillRow{Label: CategoryLabel(c.Name), Items: strings.Join(names, ", ")})
	}

	for _, e := range p.Education {
		degree := e.Degree
		if e.Field != "" {
			degree = strings.TrimSpace(degree + " in " + e.Field)
		}
		data.Education = append(data.Education, educationEntry{
			Institution: e.Institution,
			Degree:      degree,
			Dates:       dateRange(e.StartDate, e.EndDate, false),
			Details:     e.Details,
		})
	}

	for _, a := range p.Activities {
		data.Activities = append(data.Activities, activityEntry{
			Name:        a.Name,
			Role:        a.Role,
			Dates:       dateRange(a.StartDate, a.EndDate, false),
			Description: a.Description,
		})
	}
	return data
}

// groupByCompany merges consecutive roles at the same company, keeping the
// order in which the tailoring stage ranked them.
func groupByCompany(experience []types.Experience) []companySection {
	var sections []companySection
	for _, e := range experience {
		role := roleSection{
			Role:         e.Role,
			Dates:        dateRange(e.StartDate, e.EndDate, true),
			Achievements: e.Achievements,
		}
		last := len(sections) - 1
		if last >= 0 && e.Company != "" && strings.EqualFold(sections[last].Company, e.Company) {
			sections[last].Roles = append(sections[last].Roles, role)
			continue
		}
		sections = append(sections, companySection{
			Company:  e.Company,
			Location: e.Location,
			Roles:    []roleSection{role},
		})
	}
	return sections
}

func dateRange(start, end string, ongoing bool) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "" && ongoing:
		return start + " - Present"
	case end == "":
		return start
	}
	return start + " - " + end
}

var categoryLabels = map[string]string{
	types.CategoryLanguages:   "Languages",
	types.CategoryFrontend:    "Frontend",
	types.CategoryBackend:     "Backend",
	types.CategoryTesting:     "Testing",
	types.CategoryDatabases:   "Databases",
	types.CategoryCloudDevops: "Cloud & DevOps",
	types.CategoryAWSServices: "AWS Services",
	types.CategoryAIML:        "AI / ML",
	types.CategoryTools:       "Tools",
}

// CategoryLabel returns the display heading for a skill category. Custom
// camelCase keys are split into words: "mobilePlatforms" -> "Mobile Platforms".
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	var b strings.Builder
	prevLower := false
	for i, r := range category {
		switch {
		case r == '_' || r == '-' || r == ' ':
			b.WriteByte(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteByte(' ')
		}
		if i == 0 || strings.HasSuffix(b.String(), " ") {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
