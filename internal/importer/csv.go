// Package importer turns admin-uploaded CSVs into directory profiles. Every
// imported profile starts at the default rating; rows without a usable name
// are rejected individually instead of failing the whole file.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dvhs/alumnirank/internal/models"
)

// headerAliases normalizes the header spellings seen in exported sheets to
// canonical column names.
var headerAliases = map[string]string{
	"profile name":          "Profile_Name",
	"profile_name":          "Profile_Name",
	"addresswithoutcountry": "Location",
	"location":              "Location",
	"profile_picture_url":   "Picture_URL",
	"high school":           "High_School",
	"high_school":           "High_School",
	"dvhs class of":         "Class_Of",
	"class of":              "Class_Of",
	"linkedinurl":           "LinkedIn_URL",
	"linkedin_url":          "LinkedIn_URL",
	"email":                 "Email",
	"phone number":          "Phone",
	"phone":                 "Phone",
}

// RowError reports one rejected CSV row. Line is 1-based and counts the
// header.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result summarizes a parse: profiles ready for insertion and the rows
// that were rejected.
type Result struct {
	Profiles []models.Profile
	Rejected []RowError
}

// Parse reads a CSV document and maps each row to a profile. The returned
// error is non-nil only for structural failures (unreadable header, ragged
// rows); per-row validation problems land in Result.Rejected.
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = normalizeHeader(h)
	}

	result := &Result{}
	line := 1
	now := time.Now().UTC()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}

		profile, rejectReason := rowToProfile(row, now)
		if rejectReason != "" {
			result.Rejected = append(result.Rejected, RowError{Line: line, Reason: rejectReason})
			continue
		}
		result.Profiles = append(result.Profiles, profile)
	}
	return result, nil
}

func normalizeHeader(h string) string {
	key := strings.ToLower(strings.TrimSpace(h))
	if canonical, ok := headerAliases[key]; ok {
		return canonical
	}
	// College_1_Name, Experience_2_Role and friends already match their
	// canonical spelling apart from case.
	return canonicalizeSlot(strings.TrimSpace(h))
}

func canonicalizeSlot(h string) string {
	parts := strings.Split(strings.ReplaceAll(h, " ", "_"), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, "_")
}

func rowToProfile(row map[string]string, now time.Time) (models.Profile, string) {
	name := row["Profile_Name"]
	if name == "" {
		return models.Profile{}, "missing profile name"
	}
	// A sheet pasted twice carries its header as a data row.
	if strings.EqualFold(name, "Profile_Name") || strings.EqualFold(name, "Profile Name") {
		return models.Profile{}, "header row repeated as data"
	}

	p := models.Profile{
		ID:          uuid.NewString(),
		Name:        name,
		Location:    row["Location"],
		PictureURL:  row["Picture_URL"],
		HighSchool:  row["High_School"],
		ClassOf:     row["Class_Of"],
		LinkedInURL: row["LinkedIn_URL"],
		Email:       row["Email"],
		Phone:       row["Phone"],
		Rating:      models.DefaultRating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.HighSchool == "" {
		p.HighSchool = "DVHS"
	}

	for i := 0; i < models.MaxColleges; i++ {
		prefix := fmt.Sprintf("College_%d_", i+1)
		p.Colleges[i] = models.College{
			Name:   row[prefix+"Name"],
			Degree: row[prefix+"Degree"],
			Logo:   row[prefix+"Logo"],
		}
	}
	for i := 0; i < models.MaxExperiences; i++ {
		prefix := fmt.Sprintf("Experience_%d_", i+1)
		p.Experiences[i] = models.Experience{
			Company: row[prefix+"Company"],
			Role:    row[prefix+"Role"],
			Logo:    row[prefix+"Logo"],
		}
	}
	return p, ""
}
