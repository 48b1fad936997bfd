package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvhs/alumnirank/internal/importer"
	"github.com/dvhs/alumnirank/internal/models"
)

const sampleCSV = `Profile Name,addressWithoutCountry,high school,DVHS class of,College_1_Name,College_1_Degree,Experience_1_Company,Experience_1_Role,linkedinUrl,Email,Phone number
Jordan Park,"San Francisco, CA",DVHS,2020,Stanford University,Computer Science,Google,Software Engineer,https://linkedin.com/in/jordan,jordan@example.com,555-0100
Riley Chen,"Seattle, WA",DVHS,2021,UC Berkeley,Data Science,Microsoft,Data Scientist,,,
`

func TestParse_ValidRows(t *testing.T) {
	result, err := importer.Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, result.Profiles, 2)
	assert.Empty(t, result.Rejected)

	p := result.Profiles[0]
	assert.Equal(t, "Jordan Park", p.Name)
	assert.Equal(t, "San Francisco, CA", p.Location)
	assert.Equal(t, "DVHS", p.HighSchool)
	assert.Equal(t, "2020", p.ClassOf)
	assert.Equal(t, "Stanford University", p.Colleges[0].Name)
	assert.Equal(t, "Computer Science", p.Colleges[0].Degree)
	assert.Equal(t, "Google", p.Experiences[0].Company)
	assert.Equal(t, "Software Engineer", p.Experiences[0].Role)
	assert.Equal(t, "https://linkedin.com/in/jordan", p.LinkedInURL)
	assert.Equal(t, "jordan@example.com", p.Email)
	assert.Equal(t, "555-0100", p.Phone)
	assert.NotEmpty(t, p.ID)
}

func TestParse_DefaultRating(t *testing.T) {
	result, err := importer.Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	for _, p := range result.Profiles {
		assert.Equal(t, models.DefaultRating, p.Rating)
	}
}

func TestParse_RejectsNamelessRows(t *testing.T) {
	csv := "Profile Name,Email\n" +
		",missing@example.com\n" +
		"Valid Person,valid@example.com\n"

	result, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Profiles, 1)
	assert.Equal(t, "Valid Person", result.Profiles[0].Name)

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 2, result.Rejected[0].Line)
	assert.Contains(t, result.Rejected[0].Reason, "name")
}

func TestParse_RejectsRepeatedHeaderRow(t *testing.T) {
	csv := "Profile Name,Email\n" +
		"Profile Name,Email\n" +
		"Valid Person,valid@example.com\n"

	result, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, result.Profiles, 1)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 2, result.Rejected[0].Line)
}

func TestParse_DefaultsHighSchool(t *testing.T) {
	csv := "Profile Name\nAlex Doe\n"

	result, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, result.Profiles, 1)
	assert.Equal(t, "DVHS", result.Profiles[0].HighSchool)
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := importer.Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParse_UniqueIDs(t *testing.T) {
	result, err := importer.Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, result.Profiles, 2)
	assert.NotEqual(t, result.Profiles[0].ID, result.Profiles[1].ID)
}
