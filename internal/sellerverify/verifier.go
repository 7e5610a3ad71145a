// Package sellerverify checks a prospective seller's student ID card pair.
//
// Text and QR payloads are read from both sides of the card, a student id is
// extracted and cross-checked, and the evidence is scored. Only attempts that
// reach the BASIC threshold produce a Result.
package sellerverify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"trustgate/internal/models"
)

type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// QRDecoder returns the decoded payload, or "" when the image holds no
// readable code.
type QRDecoder interface {
	DecodeQR(ctx context.Context, image []byte) (string, error)
}

type ProfileFinder interface {
	FindSellerByStudentID(ctx context.Context, studentID string) (*models.SellerProfile, error)
}

type Files interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

type Result struct {
	StudentID string                   `json:"studentId"`
	Score     int                      `json:"score"`
	Level     models.VerificationLevel `json:"level"`
	FrontHash string                   `json:"frontHash"`
	BackHash  string                   `json:"backHash"`
}

type Verifier struct {
	policy      Policy
	files       Files
	ocr         TextExtractor
	qr          QRDecoder
	profiles    ProfileFinder
	parser      StudentIDParser
	campus      CampusText
	callTimeout time.Duration
}

type Option func(*Verifier)

// WithParser replaces the regex student-id parser.
func WithParser(p StudentIDParser) Option {
	return func(v *Verifier) {
		v.parser = p
	}
}

func NewVerifier(policy Policy, files Files, ocr TextExtractor, qr QRDecoder, profiles ProfileFinder, callTimeout time.Duration, opts ...Option) (*Verifier, error) {
	parser, err := NewRegexParser(policy.StudentIDPattern)
	if err != nil {
		return nil, err
	}

	v := &Verifier{
		policy:      policy,
		files:       files,
		ocr:         ocr,
		qr:          qr,
		profiles:    profiles,
		parser:      parser,
		campus:      CampusText{Name: policy.InstitutionName, Kind: policy.InstitutionType},
		callTimeout: callTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

type side struct {
	data []byte
	text string
	qr   string
}

// Verify checks the card pair and removes both source files once it
// passes. Callers that persist the result should use Check and Discard so
// the files outlive a failed write.
func (v *Verifier) Verify(ctx context.Context, userID, frontPath, backPath string) (Result, error) {
	result, err := v.Check(ctx, userID, frontPath, backPath)
	if err != nil {
		return Result{}, err
	}
	v.Discard(ctx, frontPath, backPath)
	return result, nil
}

// Check scores the card pair at frontPath/backPath for userID. It fails
// with ErrVerificationFailed when no student id is readable or the score
// is below BASIC, and with ErrExtractionTimeout when OCR or QR decoding
// exceeds its deadline. The source files are left in place.
func (v *Verifier) Check(ctx context.Context, userID, frontPath, backPath string) (Result, error) {
	front, back := &side{}, &side{}

	var err error
	if front.data, err = v.files.Read(ctx, frontPath); err != nil {
		return Result{}, fmt.Errorf("read front image: %w", err)
	}
	if back.data, err = v.files.Read(ctx, backPath); err != nil {
		return Result{}, fmt.Errorf("read back image: %w", err)
	}

	if err := v.extract(ctx, front, back); err != nil {
		return Result{}, err
	}

	studentID, ok := v.parser.Parse(front.text)
	if !ok {
		studentID, ok = v.parser.Parse(back.text)
	}
	if !ok {
		return Result{}, fmt.Errorf("%w: student id not detected", ErrVerificationFailed)
	}

	existing, err := v.profiles.FindSellerByStudentID(ctx, studentID)
	if err != nil {
		return Result{}, fmt.Errorf("find seller by student id: %w", err)
	}

	signals := Signals{
		HasUniversityText: v.campus.Matches(front.text + back.text),
		StudentIDFound:    true,
		QRMatches:         payloadContains(studentID, front.qr, back.qr),
		Duplicate:         existing != nil && existing.UserID != userID,
	}

	score := v.policy.Score(signals)
	level := v.policy.LevelFor(score)
	if level == models.LevelFlagged {
		return Result{}, fmt.Errorf("%w: score %d below %d", ErrVerificationFailed, score, v.policy.BasicFrom)
	}

	return Result{
		StudentID: studentID,
		Score:     score,
		Level:     level,
		FrontHash: contentHash(front.data),
		BackHash:  contentHash(back.data),
	}, nil
}

// extract runs OCR and QR decoding for both sides concurrently, each call
// under its own deadline.
func (v *Verifier) extract(ctx context.Context, front, back *side) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range []*side{front, back} {
		s := s
		g.Go(func() error {
			text, err := bounded(gctx, v.callTimeout, func(ctx context.Context) (string, error) {
				return v.ocr.ExtractText(ctx, s.data)
			})
			if err != nil {
				return fmt.Errorf("extract text: %w", err)
			}
			s.text = text
			return nil
		})
		g.Go(func() error {
			payload, err := bounded(gctx, v.callTimeout, func(ctx context.Context) (string, error) {
				return v.qr.DecodeQR(ctx, s.data)
			})
			if err != nil {
				return fmt.Errorf("decode qr: %w", err)
			}
			s.qr = payload
			return nil
		})
	}

	return g.Wait()
}

// Discard removes source images. Failures are ignored.
func (v *Verifier) Discard(ctx context.Context, paths ...string) {
	for _, p := range paths {
		_ = v.files.Remove(ctx, p)
	}
}

func payloadContains(studentID string, payloads ...string) bool {
	for _, p := range payloads {
		if p != "" && strings.Contains(p, studentID) {
			return true
		}
	}
	return false
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
