package patient

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RecordNumberSource reports how a patient's medical record number was
// assigned, so fallback paths are observable instead of silent.
type RecordNumberSource string

const (
	RecordNumberProvided   RecordNumberSource = "provided"
	RecordNumberSequential RecordNumberSource = "sequential"
	RecordNumberFallback   RecordNumberSource = "fallback"
)

// maxSeqProbes bounds the uniqueness re-check loop before falling back to a
// random identifier.
const maxSeqProbes = 1000

type Service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// CreatePatient validates and stores a patient. When no medical record
// number is supplied one is generated as YEAR/MM/SEQ (sequence zero-padded
// to four digits, scoped to the tenant's creations that month). The returned
// source tells which assignment path ran.
func (s *Service) CreatePatient(ctx context.Context, p *Patient) (RecordNumberSource, error) {
	if p.TenantID == uuid.Nil {
		return "", fmt.Errorf("tenant_id is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return "", fmt.Errorf("first_name and last_name are required")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return "", fmt.Errorf("invalid gender: %s", *p.Gender)
	}

	source := RecordNumberProvided
	if p.MedicalRecordNumber == "" {
		mrn, src := s.nextRecordNumber(ctx, p.TenantID)
		p.MedicalRecordNumber = mrn
		source = src
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return "", err
	}
	return source, nil
}

// nextRecordNumber generates the next sequential record number for the
// tenant, probing forward on collisions. Any repository failure degrades to
// a random 12-hex identifier so patient creation is never blocked.
func (s *Service) nextRecordNumber(ctx context.Context, tenantID uuid.UUID) (string, RecordNumberSource) {
	now := s.now()
	year, month := now.Year(), int(now.Month())

	count, err := s.repo.CountCreatedInMonth(ctx, tenantID, year, month)
	if err != nil {
		s.log.Warn().Err(err).Str("tenant_id", tenantID.String()).
			Msg("record number sequence lookup failed, using random fallback")
		return randomRecordNumber(), RecordNumberFallback
	}

	seq := count + 1
	for i := 0; i < maxSeqProbes; i++ {
		candidate := fmt.Sprintf("%d/%02d/%04d", year, month, seq)
		taken, err := s.repo.RecordNumberExists(ctx, tenantID, candidate)
		if err != nil {
			s.log.Warn().Err(err).Str("tenant_id", tenantID.String()).
				Msg("record number uniqueness check failed, using random fallback")
			return randomRecordNumber(), RecordNumberFallback
		}
		if !taken {
			return candidate, RecordNumberSequential
		}
		seq++
	}

	s.log.Warn().Str("tenant_id", tenantID.String()).
		Msg("record number sequence exhausted, using random fallback")
	return randomRecordNumber(), RecordNumberFallback
}

func randomRecordNumber() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return uuid.New().String()[:12]
	}
	return hex.EncodeToString(buf)
}

func (s *Service) GetPatient(ctx context.Context, tenantID, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	existing, err := s.repo.GetByID(ctx, p.TenantID, p.ID)
	if err != nil {
		return fmt.Errorf("patient not found: %w", err)
	}
	if p.MedicalRecordNumber == "" {
		p.MedicalRecordNumber = existing.MedicalRecordNumber
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *Service) ListPatients(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, tenantID, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, tenantID uuid.UUID, query string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, tenantID, query, limit, offset)
}
