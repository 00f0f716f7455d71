package rendering

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-formatter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderDoc(t *testing.T, rec *types.ResumeRecord) *goquery.Document {
	t.Helper()
	html, err := RenderHTML(Build(rec))
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	require.NoError(t, err)
	return doc
}

func sectionHeadings(doc *goquery.Document) []string {
	var out []string
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

func TestRenderHTML_OmitsNotAvailableHeadings(t *testing.T) {
	rec := decodeRecord(t, `{
		"name": "Jane Doe",
		"summary": "Not available",
		"certifications": "Not available",
		"projects": "Not available",
		"skills": [{"Languages": ["Go"]}],
		"professional_experience": ["Shipped things"]
	}`)

	doc := renderDoc(t, rec)
	hs := sectionHeadings(doc)
	assert.NotContains(t, hs, HeadingSummary)
	assert.NotContains(t, hs, HeadingCertifications)
	assert.NotContains(t, hs, HeadingProjects)
	assert.Contains(t, hs, HeadingSkills)
	assert.Contains(t, hs, HeadingExperience)
	assert.NotContains(t, doc.Text(), types.NotAvailable)
}

func TestRenderHTML_ExperienceOrder(t *testing.T) {
	rec := decodeRecord(t, `{
		"name": "x",
		"experience_data": [
			{"company": "A", "responsibilities": []},
			{"company": "B", "responsibilities": ["did X"]}
		]
	}`)

	doc := renderDoc(t, rec)
	var companies []string
	doc.Find(`[data-section="experience_data"] li[data-field="Company"]`).Each(func(_ int, s *goquery.Selection) {
		companies = append(companies, s.Text())
	})
	assert.Equal(t, []string{"Company: B", "Company: A"}, companies)
	assert.Equal(t, "did X", doc.Find(".responsibilities li").First().Text())
}

func TestRenderHTML_ContinuationPages(t *testing.T) {
	rec := &types.ResumeRecord{
		Name:                   "Jane",
		ProfessionalExperience: types.TextList(items("exp", 21)),
	}

	doc := renderDoc(t, rec)
	assert.Equal(t, 3, doc.Find(".page[data-page]").Length())
	assert.Equal(t, 1, doc.Find("header h1").Length(), "header only on the first page")

	continued := doc.Find(`[data-section="continued"]`)
	require.Equal(t, 2, continued.Length())
	assert.Equal(t, "Page 2", continued.First().Find("li").Text())
	assert.Equal(t, 10, doc.Find(`.page[data-page="1"] [data-section="professional_experience"] li`).Length())
	assert.Equal(t, 1, doc.Find(`.page[data-page="3"] [data-section="professional_experience"] li`).Length())
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	rec := &types.ResumeRecord{Name: "<script>alert(1)</script>"}
	html, err := RenderHTML(Build(rec))
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>alert(1)</script>")
}

func TestRenderHTML_EducationAfterDetails(t *testing.T) {
	rec := decodeRecord(t, `{
		"name": "x",
		"education": ["BSc"],
		"experience_data": [{"company": "A", "responsibilities": ["r"]}]
	}`)

	doc := renderDoc(t, rec)
	sections := doc.Find(".detail section")
	require.Equal(t, 2, sections.Length())
	assert.Equal(t, "experience_data", sections.Eq(0).AttrOr("data-section", ""))
	assert.Equal(t, "education", sections.Eq(1).AttrOr("data-section", ""))
}

func TestRenderHTML_DetailsPageBeforeContinuations(t *testing.T) {
	rec := &types.ResumeRecord{
		Name:                   "Jane",
		ProfessionalExperience: types.TextList(items("exp", 21)),
		Education:              types.TextList{"BSc"},
	}

	doc := renderDoc(t, rec)
	var order []string
	doc.Find("body > .page").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("detail") {
			order = append(order, "details")
			return
		}
		order = append(order, s.AttrOr("data-page", ""))
	})
	assert.Equal(t, []string{"1", "details", "2", "3"}, order)
}
