package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ROAMMATE_BACK-END/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the tables used by the Postgres repositories.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PGListingRepository stores listings and join requests in Postgres.
type PGListingRepository struct {
	db *pgxpool.Pool
}

func NewPGListingRepository(db *pgxpool.Pool) *PGListingRepository {
	return &PGListingRepository{db: db}
}

const listingColumns = `l.id, l.title, l.destination, l.start_location, l.start_date, l.end_date,
	l.description, l.image_urls, l.categories, l.max_group_size, l.current_member_count, l.budget,
	l.created_by_id, l.creator_name, l.smoking_policy, l.alcohol_policy, l.gender_preference,
	l.target_age_group, l.target_traveler_type, l.created_at, l.updated_at,
	COALESCE((SELECT array_agg(r.user_id ORDER BY r.requested_at) FROM listing_join_requests r WHERE r.listing_id = l.id), '{}')`

func (r *PGListingRepository) ListListings(ctx context.Context) ([]models.Listing, error) {
	rows, err := r.db.Query(ctx, `SELECT `+listingColumns+` FROM listings l ORDER BY l.created_at, l.id`)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	out := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}

func (r *PGListingRepository) GetListing(ctx context.Context, id string) (models.Listing, error) {
	row := r.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = $1`, id)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Listing{}, ErrNotFound
	}
	return l, err
}

func (r *PGListingRepository) CreateListing(ctx context.Context, l models.Listing) (string, error) {
	if err := CheckCapacity(l); err != nil {
		return "", err
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO listings (id, title, destination, start_location, start_date, end_date, description,
		 image_urls, categories, max_group_size, current_member_count, budget, created_by_id, creator_name,
		 smoking_policy, alcohol_policy, gender_preference, target_age_group, target_traveler_type,
		 created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		l.ID, l.Title, l.Destination, l.StartLocation, l.StartDate, l.EndDate, l.Description,
		nonNil(l.ImageURLs), nonNil(l.Categories), l.MaxGroupSize, l.CurrentMemberCount, l.Budget,
		l.CreatedByID, l.CreatorName,
		string(l.SmokingPolicy), string(l.AlcoholPolicy), string(l.GenderPreference),
		string(l.TargetAgeGroup), string(l.TargetTravelerType),
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", fmt.Errorf("%w: listing %s already exists", ErrInvalidListing, l.ID)
		}
		return "", fmt.Errorf("insert listing: %w", err)
	}
	return l.ID, nil
}

func (r *PGListingRepository) AddPendingMember(ctx context.Context, listingID, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var maxSize, current int
	err = tx.QueryRow(ctx,
		`SELECT max_group_size, current_member_count FROM listings WHERE id = $1 FOR UPDATE`,
		listingID).Scan(&maxSize, &current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock listing: %w", err)
	}

	var already bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM listing_join_requests WHERE listing_id = $1 AND user_id = $2)`,
		listingID, userID).Scan(&already)
	if err != nil {
		return fmt.Errorf("check join request: %w", err)
	}
	if already {
		return nil
	}
	if current >= maxSize {
		return ErrGroupFull
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO listing_join_requests (listing_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (listing_id, user_id) DO NOTHING`,
		listingID, userID); err != nil {
		return fmt.Errorf("insert join request: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE listings SET updated_at = now() WHERE id = $1`, listingID); err != nil {
		return fmt.Errorf("touch listing: %w", err)
	}
	return tx.Commit(ctx)
}

func scanListing(row pgx.Row) (models.Listing, error) {
	var (
		l                                       models.Listing
		smoking, alcohol, gender, age, traveler string
	)
	err := row.Scan(&l.ID, &l.Title, &l.Destination, &l.StartLocation, &l.StartDate, &l.EndDate,
		&l.Description, &l.ImageURLs, &l.Categories, &l.MaxGroupSize, &l.CurrentMemberCount, &l.Budget,
		&l.CreatedByID, &l.CreatorName, &smoking, &alcohol, &gender, &age, &traveler,
		&l.CreatedAt, &l.UpdatedAt, &l.PendingMemberIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l, err
		}
		return l, fmt.Errorf("scan listing: %w", err)
	}
	l.SmokingPolicy = models.SmokingPolicy(smoking)
	l.AlcoholPolicy = models.AlcoholPolicy(alcohol)
	l.GenderPreference = models.GenderPreference(gender)
	l.TargetAgeGroup = models.AgeGroup(age)
	l.TargetTravelerType = models.TravelerType(traveler)
	return l, nil
}

// PGProfileRepository stores user profiles in Postgres.
type PGProfileRepository struct {
	db *pgxpool.Pool
}

func NewPGProfileRepository(db *pgxpool.Pool) *PGProfileRepository {
	return &PGProfileRepository{db: db}
}

func (r *PGProfileRepository) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	var (
		p                                       models.UserProfile
		smoking, alcohol, gender, age, traveler string
	)
	err := r.db.QueryRow(ctx,
		`SELECT user_id, name, email, avatar_url, bio, interests, travel_history, preferences,
		 smoking_stance, alcohol_stance, preferred_gender_mix, preferred_age_group, preferred_traveler_type,
		 complete, created_at, updated_at
		 FROM user_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Name, &p.Email, &p.AvatarURL, &p.Bio, &p.Interests, &p.TravelHistory, &p.Preferences,
			&smoking, &alcohol, &gender, &age, &traveler, &p.Complete, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("query profile: %w", err)
	}
	p.SmokingStance = models.SmokingStance(smoking)
	p.AlcoholStance = models.AlcoholStance(alcohol)
	p.PreferredGenderMix = models.GenderPreference(gender)
	p.PreferredAgeGroup = models.AgeGroup(age)
	p.PreferredTravelerType = models.TravelerType(traveler)
	return p, nil
}

func (r *PGProfileRepository) SaveProfile(ctx context.Context, p models.UserProfile) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO user_profiles (user_id, name, email, avatar_url, bio, interests, travel_history, preferences,
		 smoking_stance, alcohol_stance, preferred_gender_mix, preferred_age_group, preferred_traveler_type,
		 complete, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (user_id) DO UPDATE SET
		   name = EXCLUDED.name, email = EXCLUDED.email, avatar_url = EXCLUDED.avatar_url, bio = EXCLUDED.bio,
		   interests = EXCLUDED.interests, travel_history = EXCLUDED.travel_history,
		   preferences = EXCLUDED.preferences, smoking_stance = EXCLUDED.smoking_stance,
		   alcohol_stance = EXCLUDED.alcohol_stance, preferred_gender_mix = EXCLUDED.preferred_gender_mix,
		   preferred_age_group = EXCLUDED.preferred_age_group,
		   preferred_traveler_type = EXCLUDED.preferred_traveler_type,
		   complete = EXCLUDED.complete, updated_at = EXCLUDED.updated_at`,
		p.UserID, p.Name, p.Email, p.AvatarURL, p.Bio,
		nonNil(p.Interests), nonNil(p.TravelHistory), nonNil(p.Preferences),
		string(p.SmokingStance), string(p.AlcoholStance), string(p.PreferredGenderMix),
		string(p.PreferredAgeGroup), string(p.PreferredTravelerType),
		p.Complete, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *PGProfileRepository) DeleteProfile(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
