package rendering

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/jonathan/resume-formatter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, body string) *types.ResumeRecord {
	t.Helper()
	var rec types.ResumeRecord
	require.NoError(t, json.Unmarshal([]byte(body), &rec))
	return &rec
}

func items(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return out
}

func TestChunk(t *testing.T) {
	assert.Nil(t, Chunk(nil, 10))
	assert.Len(t, Chunk(items("x", 10), 10), 1)

	chunks := Chunk(items("x", 23), 10)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 10)
	assert.Len(t, chunks[2], 3)
	assert.Equal(t, "x 11", chunks[1][0])
}

func TestBuild_OmitsUnavailableSections(t *testing.T) {
	rec := decodeRecord(t, `{
		"name": "Jane Doe",
		"summary": "Not available",
		"certifications": "Not available",
		"projects": ["Not available"],
		"skills": ["Not available"],
		"education": "Not available",
		"professional_experience": [],
		"experience_data": "Not available"
	}`)

	l := Build(rec)
	assert.Equal(t, "Jane Doe", l.Name)
	assert.Empty(t, l.Summary)
	assert.Empty(t, l.Certifications)
	assert.Empty(t, l.Skills)
	assert.Empty(t, l.Education)
	assert.Empty(t, l.Experience)
	require.Len(t, l.Pages, 1)
	assert.Empty(t, l.Pages[0].Projects)
	assert.Empty(t, l.Pages[0].Experience)
}

func TestBuild_ChunksAcrossPages(t *testing.T) {
	rec := &types.ResumeRecord{
		Name:                   "Jane",
		ProfessionalExperience: types.TextList(items("exp", 25)),
		Projects:               types.TextList(items("proj", 12)),
	}

	l := Build(rec)
	require.Len(t, l.Pages, 3)
	assert.False(t, l.Pages[0].Continued())
	assert.True(t, l.Pages[1].Continued())
	assert.Equal(t, "Page 3", l.Pages[2].Label())
	assert.Len(t, l.Pages[0].Experience, 10)
	assert.Len(t, l.Pages[1].Projects, 2)
	assert.Len(t, l.Pages[2].Experience, 5)
	assert.Empty(t, l.Pages[2].Projects)
}

func TestBuild_ExperienceOrder(t *testing.T) {
	rec := decodeRecord(t, `{
		"name": "x",
		"experience_data": [
			{"company": "A", "responsibilities": []},
			{"company": "B", "responsibilities": ["did X"]},
			{"company": "C", "responsibilities": "Not available"},
			{"company": "D", "responsibilities": ["did Y"]}
		]
	}`)

	l := Build(rec)
	require.Len(t, l.Experience, 4)
	companies := make([]string, len(l.Experience))
	for i, e := range l.Experience {
		companies[i] = e.Fields[0].Value
	}
	assert.Equal(t, []string{"B", "D", "A", "C"}, companies)

	// Source record is untouched
	assert.Equal(t, types.Text("A"), rec.ExperienceData[0].Company)
}

func TestBuild_ExperienceFields(t *testing.T) {
	rec := decodeRecord(t, `{
		"experience_data": [{
			"company": "Acme",
			"role": "Engineer",
			"startDate": "Jan 2020",
			"endDate": "Not available",
			"clientEngagement": "Not available",
			"program": "Apollo",
			"responsibilities": ["Built", "Not available"]
		}]
	}`)

	l := Build(rec)
	require.Len(t, l.Experience, 1)
	assert.Equal(t, []Field{
		{Label: LabelCompany, Value: "Acme"},
		{Label: LabelRole, Value: "Engineer"},
		{Label: LabelDuration, Value: "Jan 2020"},
		{Label: LabelProgram, Value: "Apollo"},
	}, l.Experience[0].Fields)
	assert.Empty(t, l.Experience[0].Responsibilities)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "2020 - 2022", duration("2020", "2022"))
	assert.Equal(t, "2022", duration("Not available", "2022"))
	assert.Equal(t, "", duration("", " "))
}

func TestBuild_NilRecord(t *testing.T) {
	l := Build(nil)
	assert.Equal(t, "Resume", l.DisplayName())
	assert.Len(t, l.Pages, 1)
}

func TestSortExperience_DoesNotMutate(t *testing.T) {
	in := []types.ExperienceEntry{
		{Company: "A"},
		{Company: "B", Responsibilities: types.TextList{"x"}},
	}
	out := SortExperience(in)
	assert.Equal(t, types.Text("B"), out[0].Company)
	assert.Equal(t, types.Text("A"), in[0].Company)
}

func TestLayout_SheetsPutDetailsAfterFirstPage(t *testing.T) {
	rec := &types.ResumeRecord{
		Name:                   "Jane",
		ProfessionalExperience: types.TextList(items("exp", 21)),
		Education:              types.TextList{"BSc"},
	}

	sheets := Build(rec).Sheets()
	require.Len(t, sheets, 4)
	assert.Equal(t, 1, sheets[0].Page.Number)
	assert.True(t, sheets[1].Details)
	assert.Equal(t, 2, sheets[2].Page.Number)
	assert.Equal(t, 3, sheets[3].Page.Number)
}

func TestLayout_SheetsWithoutDetails(t *testing.T) {
	l := Build(&types.ResumeRecord{Name: "Jane", ProfessionalExperience: types.TextList(items("exp", 11))})

	sheets := l.Sheets()
	require.Len(t, sheets, 2)
	assert.False(t, l.HasDetails())
	for _, s := range sheets {
		assert.False(t, s.Details)
	}
}
