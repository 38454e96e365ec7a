package contacts

import (
	"context"
	"fmt"
)

// Service handles contact business rules.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateContactInput describes the creation payload.
type CreateContactInput struct {
	Name            string      `json:"name" validate:"required"`
	Email           string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string      `json:"phone,omitempty"`
	ContactType     ContactType `json:"contact_type" validate:"required,oneof=customer vendor both"`
	CompanyName     string      `json:"company_name,omitempty"`
	GSTIN           string      `json:"gstin,omitempty"`
	PAN             string      `json:"pan,omitempty"`
	BillingAddress  *Address    `json:"billing_address,omitempty"`
	ShippingAddress *Address    `json:"shipping_address,omitempty"`
	CreditLimit     float64     `json:"credit_limit" validate:"gte=0"`
	PaymentTerms    int         `json:"payment_terms" validate:"gte=0"`
	Notes           string      `json:"notes,omitempty"`
}

// Create validates and persists a contact.
func (s *Service) Create(ctx context.Context, input CreateContactInput) (*Contact, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	contact := Contact{
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		ContactType:     input.ContactType,
		CompanyName:     input.CompanyName,
		GSTIN:           input.GSTIN,
		PAN:             input.PAN,
		BillingAddress:  input.BillingAddress,
		ShippingAddress: input.ShippingAddress,
		CreditLimit:     input.CreditLimit,
		PaymentTerms:    input.PaymentTerms,
		Notes:           input.Notes,
	}
	id, err := s.repo.Create(ctx, contact)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update rewrites a contact's mutable fields.
func (s *Service) Update(ctx context.Context, id int64, input CreateContactInput) (*Contact, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = input.Name
	existing.Email = input.Email
	existing.Phone = input.Phone
	existing.ContactType = input.ContactType
	existing.CompanyName = input.CompanyName
	existing.GSTIN = input.GSTIN
	existing.PAN = input.PAN
	existing.BillingAddress = input.BillingAddress
	existing.ShippingAddress = input.ShippingAddress
	existing.CreditLimit = input.CreditLimit
	existing.PaymentTerms = input.PaymentTerms
	existing.Notes = input.Notes
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ProfileUpdate is the subset of fields a portal user may edit on their own
// contact record.
type ProfileUpdate struct {
	Name            string
	Phone           string
	BillingAddress  *Address
	ShippingAddress *Address
}

// UpdateProfile applies a portal user's self-service edits. Commercial terms
// stay untouched.
func (s *Service) UpdateProfile(ctx context.Context, id int64, input ProfileUpdate) (*Contact, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = input.Name
	existing.Phone = input.Phone
	existing.BillingAddress = input.BillingAddress
	existing.ShippingAddress = input.ShippingAddress
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get returns one contact.
func (s *Service) Get(ctx context.Context, id int64) (*Contact, error) {
	contact, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// List returns contacts matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Contact, int, error) {
	return s.repo.List(ctx, filters)
}

// Archive toggles the archived flag. Archived contacts stay referenced by
// historical documents.
func (s *Service) Archive(ctx context.Context, id int64, archived bool) error {
	return s.repo.SetArchived(ctx, id, archived)
}

// ContactRole implements the documents.ContactPort lookup. Archived contacts
// are rejected for new documents.
func (s *Service) ContactRole(ctx context.Context, id int64) (string, error) {
	contact, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if contact.IsArchived {
		return "", fmt.Errorf("%w: contact archived", ErrValidation)
	}
	return string(contact.ContactType), nil
}
