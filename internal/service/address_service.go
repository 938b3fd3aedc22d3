package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodcourt/internal/model"
	"foodcourt/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// addressService implements AddressService.
type addressService struct {
	addressRepo repository.AddressRepository
	logger      zerolog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(addressRepo repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		addressRepo: addressRepo,
		logger:      logger.With().Str("service", "address").Logger(),
	}
}

// List retrieves the user's addresses, default first.
func (s *addressService) List(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// Create saves a new address. When the address is marked default, every
// other default of the user is cleared in the same transaction, so at most
// one default exists at rest.
func (s *addressService) Create(ctx context.Context, userID uuid.UUID, req model.CreateAddressRequest) (*model.Address, error) {
	if strings.TrimSpace(req.Street) == "" {
		return nil, model.Validation("Street is required")
	}
	if strings.TrimSpace(req.City) == "" {
		return nil, model.Validation("City is required")
	}

	address := &model.Address{
		ID:         uuid.New(),
		UserID:     userID,
		Label:      req.Label,
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
		IsDefault:  req.IsDefault,
		CreatedAt:  time.Now(),
	}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to create address")
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	s.logger.Info().
		Str("address_id", address.ID.String()).
		Str("user_id", userID.String()).
		Bool("default", address.IsDefault).
		Msg("address created")

	return address, nil
}

// SetDefault makes the address the user's only default.
func (s *addressService) SetDefault(ctx context.Context, userID, addressID uuid.UUID) error {
	ok, err := s.addressRepo.SetDefault(ctx, userID, addressID)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}
	if !ok {
		return model.ErrAddressNotFound
	}
	return nil
}

// Delete removes the user's address.
func (s *addressService) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	ok, err := s.addressRepo.Delete(ctx, userID, addressID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if !ok {
		return model.ErrAddressNotFound
	}
	return nil
}
