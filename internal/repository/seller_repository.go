package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustgate/internal/models"
)

var (
	ErrSellerNotFound = errors.New("seller profile not found")
	ErrStudentIDTaken = errors.New("student id already registered to another seller")
)

const (
	uniqueViolation    = "23505"
	studentIDUniqueKey = "seller_profiles_student_id_key"
)

const sellerColumns = `
	id, user_id, student_id, shop_name, description, campus_location, main_phone,
	secondary_phone, instagram, telegram, tiktok, other, agreed_to_rules,
	verification_status, verification_score, verification_level,
	front_image_hash, back_image_hash, created_at, updated_at
`

type SellerRepository struct {
	pool *pgxpool.Pool
}

func NewSellerRepository(pool *pgxpool.Pool) *SellerRepository {
	return &SellerRepository{pool: pool}
}

func scanSeller(row pgx.Row) (models.SellerProfile, error) {
	var p models.SellerProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.StudentID,
		&p.ShopName,
		&p.Description,
		&p.CampusLocation,
		&p.MainPhone,
		&p.SecondaryPhone,
		&p.Instagram,
		&p.Telegram,
		&p.TikTok,
		&p.Other,
		&p.AgreedToRules,
		&p.VerificationStatus,
		&p.VerificationScore,
		&p.VerificationLevel,
		&p.FrontImageHash,
		&p.BackImageHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// FindSellerByStudentID returns nil without error when no profile carries
// the id.
func (r *SellerRepository) FindSellerByStudentID(ctx context.Context, studentID string) (*models.SellerProfile, error) {
	p, err := scanSeller(r.pool.QueryRow(ctx, `SELECT `+sellerColumns+` FROM seller_profiles WHERE student_id = $1`, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *SellerRepository) FindByUserID(ctx context.Context, userID string) (models.SellerProfile, error) {
	p, err := scanSeller(r.pool.QueryRow(ctx, `SELECT `+sellerColumns+` FROM seller_profiles WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SellerProfile{}, ErrSellerNotFound
		}
		return models.SellerProfile{}, err
	}
	return p, nil
}

// Upsert stores the profile keyed by user and returns the stored row. A
// repeat request refreshes the shop details and verification outcome but
// keeps the original id, student id and creation time.
func (r *SellerRepository) Upsert(ctx context.Context, p models.SellerProfile) (models.SellerProfile, error) {
	other := p.Other
	if other == nil {
		other = []string{}
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO seller_profiles (
			id, user_id, student_id, shop_name, description, campus_location, main_phone,
			secondary_phone, instagram, telegram, tiktok, other, agreed_to_rules,
			verification_status, verification_score, verification_level,
			front_image_hash, back_image_hash, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW()
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			shop_name = EXCLUDED.shop_name,
			description = EXCLUDED.description,
			campus_location = EXCLUDED.campus_location,
			main_phone = EXCLUDED.main_phone,
			secondary_phone = EXCLUDED.secondary_phone,
			instagram = EXCLUDED.instagram,
			telegram = EXCLUDED.telegram,
			tiktok = EXCLUDED.tiktok,
			other = EXCLUDED.other,
			agreed_to_rules = EXCLUDED.agreed_to_rules,
			verification_status = EXCLUDED.verification_status,
			verification_score = EXCLUDED.verification_score,
			verification_level = EXCLUDED.verification_level,
			front_image_hash = EXCLUDED.front_image_hash,
			back_image_hash = EXCLUDED.back_image_hash,
			updated_at = NOW()
		RETURNING `+sellerColumns,
		p.ID,
		p.UserID,
		p.StudentID,
		p.ShopName,
		p.Description,
		p.CampusLocation,
		p.MainPhone,
		p.SecondaryPhone,
		p.Instagram,
		p.Telegram,
		p.TikTok,
		other,
		p.AgreedToRules,
		p.VerificationStatus,
		p.VerificationScore,
		p.VerificationLevel,
		p.FrontImageHash,
		p.BackImageHash,
	)

	stored, err := scanSeller(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == studentIDUniqueKey {
		return models.SellerProfile{}, ErrStudentIDTaken
	}
	if err != nil {
		return models.SellerProfile{}, err
	}
	return stored, nil
}
