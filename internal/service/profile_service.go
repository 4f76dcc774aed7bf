package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// ============================================
// Profile Service
// ============================================

// ProfileOwner is the signed-in side of a session.
type ProfileOwner interface {
	CurrentMember() (models.Member, bool)
	ReplaceCurrentMember(ctx context.Context, m models.Member) error
}

type ProfileService interface {
	Get(owner ProfileOwner) (models.Member, error)
	Update(ctx context.Context, owner ProfileOwner, req *models.UpdateProfileRequest) (models.Member, error)
}

type profileService struct {
	memberRepo repository.MemberRepository
}

func NewProfileService(memberRepo repository.MemberRepository) ProfileService {
	return &profileService{memberRepo: memberRepo}
}

func (s *profileService) Get(owner ProfileOwner) (models.Member, error) {
	m, ok := owner.CurrentMember()
	if !ok {
		return models.Member{}, ErrNotSignedIn
	}
	return m, nil
}

// Update writes the changed fields of the signed-in member. ID, email and
// credential cannot be changed here. The session's copy is replaced by the
// updated member.
func (s *profileService) Update(ctx context.Context, owner ProfileOwner, req *models.UpdateProfileRequest) (models.Member, error) {
	member, ok := owner.CurrentMember()
	if !ok {
		return models.Member{}, ErrNotSignedIn
	}

	fields := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			return models.Member{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		member.Name = *req.Name
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
		fields["phone"] = *req.Phone
	}
	if req.BloodGroup != nil {
		member.BloodGroup = *req.BloodGroup
		fields["bloodGroup"] = *req.BloodGroup
	}
	if req.DOB != nil {
		member.DOB = *req.DOB
		fields["dob"] = *req.DOB
	}
	if req.Birthday != nil {
		member.Birthday = *req.Birthday
		fields["birthday"] = *req.Birthday
	}
	if req.Location != nil {
		member.Location = *req.Location
		fields["location"] = *req.Location
	}
	if req.FamilyMembers != nil {
		family, err := normalizeFamily(*req.FamilyMembers)
		if err != nil {
			return models.Member{}, err
		}
		member.FamilyMembers = family
		encoded, err := repository.ToDocument(struct {
			FamilyMembers []models.FamilyMember `json:"familyMembers"`
		}{family})
		if err != nil {
			return models.Member{}, err
		}
		fields["familyMembers"] = encoded["familyMembers"]
	}

	if len(fields) == 0 {
		return member, nil
	}
	if err := s.memberRepo.Update(ctx, member.ID, fields); err != nil {
		return models.Member{}, err
	}
	if err := owner.ReplaceCurrentMember(ctx, member); err != nil {
		return models.Member{}, err
	}
	return member, nil
}

// normalizeFamily gives new family members an ID and checks relations.
func normalizeFamily(in []models.FamilyMember) ([]models.FamilyMember, error) {
	out := make([]models.FamilyMember, len(in))
	for i, f := range in {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: family member name is required", ErrInvalidInput)
		}
		if !types.IsValidRelation(f.Relation) {
			return nil, fmt.Errorf("%w: relation %q", ErrInvalidInput, f.Relation)
		}
		if f.Age < 0 {
			return nil, fmt.Errorf("%w: age %d", ErrInvalidInput, f.Age)
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		out[i] = f
	}
	return out, nil
}
