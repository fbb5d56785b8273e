package service

import (
	"context"
	"strings"

	"github.com/example/rostishop/pkg/errs"
	"github.com/example/rostishop/pkg/models"
)

type ContactService struct {
	contacts ContactStore
}

func NewContactService(contacts ContactStore) *ContactService {
	return &ContactService{contacts: contacts}
}

func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*models.ContactMessage, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(message) == "" {
		return nil, errs.Validation("name, email and message are required")
	}

	return s.contacts.Insert(ctx, &models.ContactMessage{
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: nowUTC(),
	})
}
