package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/sanchari-backend/internal/mirror"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
)

// ============================================
// Admin Service
// ============================================

type AdminService interface {
	Stats() models.StatsResponse
	RegisterMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error)
}

type adminService struct {
	memberRepo repository.MemberRepository
	mirrors    *mirror.Mirrors
}

func NewAdminService(memberRepo repository.MemberRepository, mirrors *mirror.Mirrors) AdminService {
	return &adminService{memberRepo: memberRepo, mirrors: mirrors}
}

// Stats counts the current mirrors: every member is a rider and every
// registration a booking.
func (s *adminService) Stats() models.StatsResponse {
	return models.StatsResponse{
		TotalRiders:    len(s.mirrors.Members.Snapshot()),
		ActiveBookings: len(s.mirrors.Registrations.Snapshot()),
	}
}

// RegisterMember writes a new member under its ID with a hashed credential.
// The duplicate-email check runs against the members mirror and is not
// atomic with the write.
func (s *adminService) RegisterMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	if _, exists := s.mirrors.FindMemberByEmail(req.Email); exists {
		return nil, ErrConflict
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, taken := s.mirrors.FindMember(id); taken {
		return nil, ErrConflict
	}

	family, err := normalizeFamily(req.FamilyMembers)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash credential: %w", err)
	}

	member := &models.Member{
		ID:            id,
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Password:      string(hashed),
		BloodGroup:    req.BloodGroup,
		DOB:           req.DOB,
		Birthday:      req.Birthday,
		Location:      req.Location,
		FamilyMembers: family,
	}
	if err := s.memberRepo.Set(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}
