package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/generation"
	"github.com/Marga-Ghale/sanchari-backend/internal/mirror"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
)

// ============================================
// Minutes Service
// ============================================

type MinutesService interface {
	GenerateMinutes(ctx context.Context, eventID string, req *models.GenerateMinutesRequest) (*models.GeneratedTextResponse, error)
	GenerateAnnouncement(ctx context.Context, eventID string) (*models.GeneratedTextResponse, error)
	List(ctx context.Context) ([]models.SavedMOM, error)
}

type minutesService struct {
	minutesRepo repository.MinutesRepository
	mirrors     *mirror.Mirrors
	generator   *generation.Generator
}

func NewMinutesService(minutesRepo repository.MinutesRepository, mirrors *mirror.Mirrors, generator *generation.Generator) MinutesService {
	return &minutesService{minutesRepo: minutesRepo, mirrors: mirrors, generator: generator}
}

// GenerateMinutes drafts minutes for an event. Without explicit participants
// the names of the registered members are used. Generated minutes are saved;
// a failed generation returns the fallback text and saves nothing.
func (s *minutesService) GenerateMinutes(ctx context.Context, eventID string, req *models.GenerateMinutesRequest) (*models.GeneratedTextResponse, error) {
	event, ok := s.mirrors.FindEvent(eventID)
	if !ok {
		return nil, ErrNotFound
	}

	participants := req.Participants
	if len(participants) == 0 {
		participants = s.participantNames(eventID)
	}

	res := s.generator.GenerateMinutes(ctx, event, models.MOMData{
		EventID:     eventID,
		Agenda:      req.Agenda,
		Discussions: req.Discussions,
		ActionItems: req.ActionItems,
		NextSteps:   req.NextSteps,
	}, participants)

	resp := &models.GeneratedTextResponse{
		Content:  res.TextOr(generation.FallbackMinutes),
		Fallback: !res.OK(),
	}
	if !res.OK() {
		return resp, nil
	}

	saved := &models.SavedMOM{
		EventID:    event.ID,
		EventTitle: event.Title,
		Content:    res.Text,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.minutesRepo.Create(ctx, saved); err != nil {
		log.Error().Err(err).Str("event", eventID).Msg("[Minutes] failed to save generated minutes")
		return resp, nil
	}
	resp.Saved = saved
	return resp, nil
}

func (s *minutesService) GenerateAnnouncement(ctx context.Context, eventID string) (*models.GeneratedTextResponse, error) {
	event, ok := s.mirrors.FindEvent(eventID)
	if !ok {
		return nil, ErrNotFound
	}
	res := s.generator.GenerateAnnouncement(ctx, event)
	return &models.GeneratedTextResponse{
		Content:  res.TextOr(generation.FallbackAnnouncement),
		Fallback: !res.OK(),
	}, nil
}

func (s *minutesService) List(ctx context.Context) ([]models.SavedMOM, error) {
	return s.minutesRepo.FindAll(ctx)
}

// participantNames lists registered members and their attending family in
// registration order.
func (s *minutesService) participantNames(eventID string) []string {
	var names []string
	for _, reg := range s.mirrors.Registrations.Snapshot() {
		if reg.EventID != eventID {
			continue
		}
		member, ok := s.mirrors.FindMember(reg.MemberID)
		if !ok {
			continue
		}
		names = append(names, member.Name)
		for _, f := range member.FamilyMembers {
			for _, id := range reg.AttendingFamilyIDs {
				if f.ID == id {
					names = append(names, f.Name)
				}
			}
		}
	}
	return names
}
