package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/repository"
	"github.com/dvhs/alumnirank/internal/repository/sqlite"
	"github.com/dvhs/alumnirank/internal/testutil"
)

type ProfileRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.ProfileRepository
}

func (s *ProfileRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewProfileRepository(s.db)
}

func (s *ProfileRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func testProfile(id, name string, rating int, createdAt time.Time) models.Profile {
	p := models.Profile{
		ID:         id,
		Name:       name,
		Location:   "San Ramon, CA",
		HighSchool: "DVHS",
		ClassOf:    "2018",
		Rating:     rating,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	p.Colleges[0] = models.College{Name: "UC Berkeley", Degree: "BS EECS"}
	p.Experiences[0] = models.Experience{Company: "Stripe", Role: "Software Engineer"}
	return p
}

func (s *ProfileRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()

	p := testProfile("p1", "Ada Alumni", 1000, time.Now().UTC())
	p.Email = "ada@example.com"
	p.Phone = "555-0100"
	p.LinkedInURL = "https://linkedin.com/in/ada"
	p.Colleges[1] = models.College{Name: "Stanford", Degree: "MS CS"}
	p.Experiences[1] = models.Experience{Company: "Figma", Role: "Engineer"}

	s.Require().NoError(s.repo.Insert(ctx, p))

	retrieved, err := s.repo.Get(ctx, "p1")
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)
	s.Assert().Equal("Ada Alumni", retrieved.Name)
	s.Assert().Equal("DVHS", retrieved.HighSchool)
	s.Assert().Equal("2018", retrieved.ClassOf)
	s.Assert().Equal(1000, retrieved.Rating)
	s.Assert().Equal("UC Berkeley", retrieved.Colleges[0].Name)
	s.Assert().Equal("Stanford", retrieved.Colleges[1].Name)
	s.Assert().Equal("", retrieved.Colleges[2].Name)
	s.Assert().Equal("Stripe", retrieved.Experiences[0].Company)
	s.Assert().Equal("Figma", retrieved.Experiences[1].Company)
	s.Assert().Equal("ada@example.com", retrieved.Email)
	s.Assert().Equal("555-0100", retrieved.Phone)
}

func (s *ProfileRepositorySuite) TestGet_NotFound() {
	retrieved, err := s.repo.Get(context.Background(), "missing")
	s.Assert().NoError(err)
	s.Assert().Nil(retrieved)
}

func (s *ProfileRepositorySuite) TestInsertBatchAndCount() {
	ctx := context.Background()
	now := time.Now().UTC()

	profiles := []models.Profile{
		testProfile("p1", "One", 1000, now),
		testProfile("p2", "Two", 1000, now),
		testProfile("p3", "Three", 1000, now),
	}
	s.Require().NoError(s.repo.InsertBatch(ctx, profiles))

	count, err := s.repo.Count(ctx, models.ProfileFilter{})
	s.Require().NoError(err)
	s.Assert().Equal(3, count)
}

func (s *ProfileRepositorySuite) TestList_Filters() {
	ctx := context.Background()
	now := time.Now().UTC()

	a := testProfile("a", "Class18 Berkeley", 1000, now)
	b := testProfile("b", "Class19 MIT", 1000, now.Add(time.Second))
	b.ClassOf = "2019"
	b.Colleges[0] = models.College{Name: "MIT", Degree: "BS"}
	b.Experiences[0] = models.Experience{Company: "Google", Role: "SWE"}
	c := testProfile("c", "Class19 Berkeley", 1000, now.Add(2*time.Second))
	c.ClassOf = "2019"

	s.Require().NoError(s.repo.InsertBatch(ctx, []models.Profile{a, b, c}))

	byClass, err := s.repo.List(ctx, models.ProfileFilter{ClassOf: "2019"})
	s.Require().NoError(err)
	s.Require().Len(byClass, 2)
	s.Assert().Equal("b", byClass[0].ID)
	s.Assert().Equal("c", byClass[1].ID)

	byCollege, err := s.repo.List(ctx, models.ProfileFilter{College: "Berkeley"})
	s.Require().NoError(err)
	s.Assert().Len(byCollege, 2)

	byCompany, err := s.repo.List(ctx, models.ProfileFilter{Company: "Google"})
	s.Require().NoError(err)
	s.Require().Len(byCompany, 1)
	s.Assert().Equal("b", byCompany[0].ID)

	count, err := s.repo.Count(ctx, models.ProfileFilter{ClassOf: "2019", College: "Berkeley"})
	s.Require().NoError(err)
	s.Assert().Equal(1, count)
}

func (s *ProfileRepositorySuite) TestList_Pagination() {
	ctx := context.Background()
	now := time.Now().UTC()

	var profiles []models.Profile
	for i := 0; i < 5; i++ {
		profiles = append(profiles, testProfile(
			fmt.Sprintf("p%d", i), fmt.Sprintf("Profile %d", i), 1000,
			now.Add(time.Duration(i)*time.Second)))
	}
	s.Require().NoError(s.repo.InsertBatch(ctx, profiles))

	page, err := s.repo.List(ctx, models.ProfileFilter{Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Assert().Equal("p2", page[0].ID)
	s.Assert().Equal("p3", page[1].ID)
}

func (s *ProfileRepositorySuite) TestTopByRating_Ordering() {
	ctx := context.Background()
	now := time.Now().UTC()

	// b and c tie on rating; the earlier profile wins the tiebreak.
	profiles := []models.Profile{
		testProfile("a", "Low", 985, now),
		testProfile("b", "TiedLate", 1015, now.Add(5*time.Second)),
		testProfile("c", "TiedEarly", 1015, now),
		testProfile("d", "Top", 1030, now),
	}
	s.Require().NoError(s.repo.InsertBatch(ctx, profiles))

	top, err := s.repo.TopByRating(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 4)
	s.Assert().Equal("d", top[0].ID)
	s.Assert().Equal("c", top[1].ID)
	s.Assert().Equal("b", top[2].ID)
	s.Assert().Equal("a", top[3].ID)

	limited, err := s.repo.TopByRating(ctx, 2)
	s.Require().NoError(err)
	s.Assert().Len(limited, 2)
}

func (s *ProfileRepositorySuite) TestRank() {
	ctx := context.Background()
	now := time.Now().UTC()

	profiles := []models.Profile{
		testProfile("a", "Low", 985, now),
		testProfile("b", "TiedLate", 1015, now.Add(5*time.Second)),
		testProfile("c", "TiedEarly", 1015, now),
		testProfile("d", "Top", 1030, now),
	}
	s.Require().NoError(s.repo.InsertBatch(ctx, profiles))

	for id, want := range map[string]int{"d": 1, "c": 2, "b": 3, "a": 4} {
		rank, err := s.repo.Rank(ctx, id)
		s.Require().NoError(err)
		s.Assert().Equal(want, rank, "rank of %s", id)
	}
}

func (s *ProfileRepositorySuite) TestRank_NotFound() {
	rank, err := s.repo.Rank(context.Background(), "missing")
	s.Assert().ErrorIs(err, sql.ErrNoRows)
	s.Assert().Equal(0, rank)
}

func (s *ProfileRepositorySuite) TestRandomCandidates_Exclusion() {
	ctx := context.Background()
	now := time.Now().UTC()

	profiles := []models.Profile{
		testProfile("a", "A", 1000, now),
		testProfile("b", "B", 1000, now),
		testProfile("c", "C", 1000, now),
	}
	s.Require().NoError(s.repo.InsertBatch(ctx, profiles))

	candidates, err := s.repo.RandomCandidates(ctx, []string{"a", "b"}, 2)
	s.Require().NoError(err)
	s.Require().Len(candidates, 1)
	s.Assert().Equal("c", candidates[0].ID)

	all, err := s.repo.RandomCandidates(ctx, nil, 10)
	s.Require().NoError(err)
	s.Assert().Len(all, 3)
}

func (s *ProfileRepositorySuite) TestSearch() {
	ctx := context.Background()
	now := time.Now().UTC()

	a := testProfile("a", "Berkeley Person", 1000, now)
	b := testProfile("b", "Googler", 1000, now)
	b.Colleges[0] = models.College{Name: "MIT", Degree: "BS"}
	b.Experiences[0] = models.Experience{Company: "Google", Role: "SWE"}
	s.Require().NoError(s.repo.InsertBatch(ctx, []models.Profile{a, b}))

	results, err := s.repo.Search(ctx, []string{"google"}, 10)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Assert().Equal("b", results[0].ID)

	// Any term may match, so unrelated terms widen the result set.
	results, err = s.repo.Search(ctx, []string{"google", "berkeley"}, 10)
	s.Require().NoError(err)
	s.Assert().Len(results, 2)

	none, err := s.repo.Search(ctx, nil, 10)
	s.Require().NoError(err)
	s.Assert().Empty(none)
}

func (s *ProfileRepositorySuite) TestFilterTreatsWildcardsLiterally() {
	ctx := context.Background()
	now := time.Now().UTC()

	a := testProfile("a", "Literal", 1000, now)
	a.Colleges[0] = models.College{Name: "100% Online University", Degree: "BA"}
	a.Experiences[0] = models.Experience{Company: "Re_Max", Role: "Agent"}
	b := testProfile("b", "Plain", 1000, now)
	s.Require().NoError(s.repo.InsertBatch(ctx, []models.Profile{a, b}))

	// % and _ in filter terms match themselves, not any substring.
	byCollege, err := s.repo.List(ctx, models.ProfileFilter{College: "%"})
	s.Require().NoError(err)
	s.Require().Len(byCollege, 1)
	s.Assert().Equal("a", byCollege[0].ID)

	byCompany, err := s.repo.List(ctx, models.ProfileFilter{Company: "_"})
	s.Require().NoError(err)
	s.Require().Len(byCompany, 1)
	s.Assert().Equal("a", byCompany[0].ID)

	results, err := s.repo.Search(ctx, []string{"100%"}, 10)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Assert().Equal("a", results[0].ID)
}

func TestProfileRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProfileRepositorySuite))
}
