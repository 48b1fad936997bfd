package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/dvhs/alumnirank/internal/logger"
	"github.com/dvhs/alumnirank/internal/models"
	"github.com/dvhs/alumnirank/internal/repository"
)

var profileColumns = []string{
	"id", "name", "location", "picture_url", "high_school", "class_of",
	"college_1_name", "college_1_degree", "college_1_logo",
	"college_2_name", "college_2_degree", "college_2_logo",
	"college_3_name", "college_3_degree", "college_3_logo",
	"experience_1_company", "experience_1_role", "experience_1_logo",
	"experience_2_company", "experience_2_role", "experience_2_logo",
	"experience_3_company", "experience_3_role", "experience_3_logo",
	"experience_4_company", "experience_4_role", "experience_4_logo",
	"linkedin_url", "email", "phone", "rating", "created_at", "updated_at",
}

// searchColumns are the free-text fields a search term is matched against.
// Rating and contact fields are deliberately not searchable.
var searchColumns = []string{
	"name", "location", "high_school", "class_of",
	"college_1_name", "college_1_degree", "college_2_name", "college_2_degree",
	"college_3_name", "college_3_degree",
	"experience_1_company", "experience_1_role", "experience_2_company", "experience_2_role",
	"experience_3_company", "experience_3_role", "experience_4_company", "experience_4_role",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Name, &p.Location, &p.PictureURL, &p.HighSchool, &p.ClassOf,
		&p.Colleges[0].Name, &p.Colleges[0].Degree, &p.Colleges[0].Logo,
		&p.Colleges[1].Name, &p.Colleges[1].Degree, &p.Colleges[1].Logo,
		&p.Colleges[2].Name, &p.Colleges[2].Degree, &p.Colleges[2].Logo,
		&p.Experiences[0].Company, &p.Experiences[0].Role, &p.Experiences[0].Logo,
		&p.Experiences[1].Company, &p.Experiences[1].Role, &p.Experiences[1].Logo,
		&p.Experiences[2].Company, &p.Experiences[2].Role, &p.Experiences[2].Logo,
		&p.Experiences[3].Company, &p.Experiences[3].Role, &p.Experiences[3].Logo,
		&p.LinkedInURL, &p.Email, &p.Phone, &p.Rating, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func profileValues(p models.Profile) []any {
	return []any{
		p.ID, p.Name, p.Location, p.PictureURL, p.HighSchool, p.ClassOf,
		p.Colleges[0].Name, p.Colleges[0].Degree, p.Colleges[0].Logo,
		p.Colleges[1].Name, p.Colleges[1].Degree, p.Colleges[1].Logo,
		p.Colleges[2].Name, p.Colleges[2].Degree, p.Colleges[2].Logo,
		p.Experiences[0].Company, p.Experiences[0].Role, p.Experiences[0].Logo,
		p.Experiences[1].Company, p.Experiences[1].Role, p.Experiences[1].Logo,
		p.Experiences[2].Company, p.Experiences[2].Role, p.Experiences[2].Logo,
		p.Experiences[3].Company, p.Experiences[3].Role, p.Experiences[3].Logo,
		p.LinkedInURL, p.Email, p.Phone, p.Rating, p.CreatedAt, p.UpdatedAt,
	}
}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%s", id)

	query, args, err := sqlBuilder.Select(profileColumns...).
		From("profiles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing profiles: class_of=%s, college=%s, company=%s",
		filter.ClassOf, filter.College, filter.Company)

	query := sqlBuilder.Select(profileColumns...).From("profiles")
	query = applyProfileFilter(query, filter)
	query = query.OrderBy("created_at ASC", "id ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	return r.queryProfiles(ctx, sqlStr, args...)
}

func (r *profileRepository) Count(ctx context.Context, filter models.ProfileFilter) (int, error) {
	query := sqlBuilder.Select("COUNT(*)").From("profiles")
	query = applyProfileFilter(query, filter)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		logger.FromContext(ctx).WithPrefix("profile_repo").Error("failed to count profiles: %v", err)
		return 0, err
	}
	return count, nil
}

// likeEscaper neutralizes LIKE metacharacters in user-supplied terms so a
// filter of "100%" matches the literal string rather than everything.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsTerm(col, term string) squirrel.Sqlizer {
	return squirrel.Expr(col+` LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(term)+"%")
}

func applyProfileFilter(query squirrel.SelectBuilder, filter models.ProfileFilter) squirrel.SelectBuilder {
	if filter.ClassOf != "" {
		query = query.Where(squirrel.Eq{"class_of": filter.ClassOf})
	}
	if filter.College != "" {
		query = query.Where(squirrel.Or{
			containsTerm("college_1_name", filter.College),
			containsTerm("college_2_name", filter.College),
			containsTerm("college_3_name", filter.College),
		})
	}
	if filter.Company != "" {
		query = query.Where(squirrel.Or{
			containsTerm("experience_1_company", filter.Company),
			containsTerm("experience_2_company", filter.Company),
			containsTerm("experience_3_company", filter.Company),
			containsTerm("experience_4_company", filter.Company),
		})
	}
	return query
}

func (r *profileRepository) Insert(ctx context.Context, profile models.Profile) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("inserting profile: id=%s, name=%s", profile.ID, profile.Name)

	query, args, err := sqlBuilder.Insert("profiles").
		Columns(profileColumns...).
		Values(profileValues(profile)...).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert profile: %v", err)
		return err
	}
	return nil
}

func (r *profileRepository) InsertBatch(ctx context.Context, profiles []models.Profile) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("batch inserting %d profiles", len(profiles))

	if len(profiles) == 0 {
		return nil
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		query := sqlBuilder.Insert("profiles").Columns(profileColumns...)
		for _, p := range profiles {
			query = query.Values(profileValues(p)...)
		}
		sqlStr, args, err := query.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			log.Error("failed to batch insert profiles: %v", err)
			return err
		}
		return nil
	})
}

func (r *profileRepository) TopByRating(ctx context.Context, limit int) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("fetching top profiles: limit=%d", limit)

	if limit <= 0 {
		limit = 100
	}

	sqlStr, args, err := sqlBuilder.Select(profileColumns...).
		From("profiles").
		OrderBy("rating DESC", "created_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryProfiles(ctx, sqlStr, args...)
}

func (r *profileRepository) Rank(ctx context.Context, id string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("computing rank: id=%s", id)

	var rating int
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, `SELECT rating, created_at FROM profiles WHERE id = ?`, id).
		Scan(&rating, &createdAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to read profile for rank: %v", err)
		}
		return 0, err
	}

	// Rank = number of profiles strictly ahead under the leaderboard
	// ordering (rating DESC, created_at ASC, id ASC), plus one.
	var ahead int
	err = r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM profiles
WHERE rating > ?
   OR (rating = ? AND created_at < ?)
   OR (rating = ? AND created_at = ? AND id < ?)
`, rating, rating, createdAt, rating, createdAt, id).Scan(&ahead)
	if err != nil {
		log.Error("failed to compute rank: %v", err)
		return 0, err
	}
	return ahead + 1, nil
}

func (r *profileRepository) RandomCandidates(ctx context.Context, exclude []string, n int) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("selecting %d random candidates, %d excluded", n, len(exclude))

	if n <= 0 {
		return nil, nil
	}

	query := sqlBuilder.Select(profileColumns...).From("profiles")
	if len(exclude) > 0 {
		query = query.Where(squirrel.NotEq{"id": exclude})
	}
	sqlStr, args, err := query.OrderBy("RANDOM()").Limit(uint64(n)).ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryProfiles(ctx, sqlStr, args...)
}

func (r *profileRepository) Search(ctx context.Context, terms []string, limit int) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("searching profiles: %d terms", len(terms))

	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query := sqlBuilder.Select(profileColumns...).From("profiles")
	// Any term may match; ranking by match count happens in the search
	// service where the matched fields are known.
	var any squirrel.Or
	for _, term := range terms {
		for _, col := range searchColumns {
			any = append(any, containsTerm(col, term))
		}
	}
	query = query.Where(any)

	sqlStr, args, err := query.Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryProfiles(ctx, sqlStr, args...)
}

func (r *profileRepository) queryProfiles(ctx context.Context, sqlStr string, args ...any) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			log.Error("failed to scan profile row: %v", err)
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
