package services

import (
	"habitsync/internal/crypto"
	"habitsync/internal/models"
)

// EncryptionService wraps the crypto cipher with domain-specific methods.
// Free-text personal content (daily log notes, profile health goals) is
// encrypted at rest; everything else is stored as-is.
type EncryptionService struct {
	cipher *crypto.Cipher
}

func NewEncryptionService(key []byte) (*EncryptionService, error) {
	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

// EncryptProfile encrypts sensitive profile fields before storing in DB
func (s *EncryptionService) EncryptProfile(p *models.UserProfile) error {
	if p.HealthGoals != nil && *p.HealthGoals != "" {
		enc, err := s.cipher.Encrypt(*p.HealthGoals)
		if err != nil {
			return err
		}
		p.HealthGoals = &enc
	}
	return nil
}

// DecryptProfile decrypts sensitive profile fields after retrieving from DB
func (s *EncryptionService) DecryptProfile(p *models.UserProfile) error {
	if p.HealthGoals != nil && *p.HealthGoals != "" {
		dec, err := s.cipher.Decrypt(*p.HealthGoals)
		if err != nil {
			return err
		}
		p.HealthGoals = &dec
	}
	return nil
}

// EncryptLog encrypts sensitive daily log fields before storing in DB
func (s *EncryptionService) EncryptLog(l *models.DailyLog) error {
	if l.Notes != nil && *l.Notes != "" {
		enc, err := s.cipher.Encrypt(*l.Notes)
		if err != nil {
			return err
		}
		l.Notes = &enc
	}
	return nil
}

// DecryptLog decrypts sensitive daily log fields after retrieving from DB
func (s *EncryptionService) DecryptLog(l *models.DailyLog) error {
	if l.Notes != nil && *l.Notes != "" {
		dec, err := s.cipher.Decrypt(*l.Notes)
		if err != nil {
			return err
		}
		l.Notes = &dec
	}
	return nil
}
