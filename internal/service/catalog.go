package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Egorka7485/tgkadsf/internal/events"
	"github.com/Egorka7485/tgkadsf/internal/models"
	"github.com/Egorka7485/tgkadsf/internal/repo"
	"github.com/Egorka7485/tgkadsf/internal/transport"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// ChannelIndex is the full-text index kept next to the channels table.
type ChannelIndex interface {
	Index(ctx context.Context, ch models.Channel) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit int) ([]models.Channel, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ChannelIndex
	Events events.Publisher
}

func (s *CatalogService) ListChannels(ctx context.Context, f repo.ChannelFilter) ([]models.Channel, error) {
	return s.Repo.ListChannels(ctx, f)
}

func (s *CatalogService) GetChannel(ctx context.Context, id uint) (*models.Channel, error) {
	ch, err := s.Repo.GetChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, fmt.Errorf("%w: channel %d", ErrNotFound, id)
	}
	return ch, nil
}

func (s *CatalogService) CreateChannel(ctx context.Context, req transport.CreateChannelRequest) (*models.Channel, error) {
	ch := req.Model()
	if strings.TrimSpace(ch.Name) == "" {
		return nil, fieldError("name", "name must not be blank")
	}
	if err := s.Repo.CreateChannel(ctx, &ch); err != nil {
		return nil, err
	}

	s.reindex(ctx, ch)
	ev := events.New(events.ChannelCreated)
	ev.ChannelID = ch.ID
	ev.Name = ch.Name
	publish(ctx, s.Events, events.TopicChannels, channelKey(ch.ID), ev)
	return &ch, nil
}

func (s *CatalogService) UpdateChannel(ctx context.Context, id uint, req transport.PatchChannelRequest) (*models.Channel, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fieldError("name", "name must not be blank")
	}

	ch, err := s.Repo.UpdateChannel(ctx, id, repo.ChannelPatch{
		Name:        req.Name,
		Description: req.Description,
		Handle:      req.Username,
		AvatarURL:   req.AvatarURL,
		Category:    req.Category,
		Platform:    req.Platform,
		Subscribers: req.Subscribers,
		Views:       req.Views,
		ERR:         req.ERR,
		Price:       req.Price,
		Verified:    req.Verified,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: channel %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, *ch)
	ev := events.New(events.ChannelUpdated)
	ev.ChannelID = ch.ID
	ev.Name = ch.Name
	publish(ctx, s.Events, events.TopicChannels, channelKey(ch.ID), ev)
	return ch, nil
}

func (s *CatalogService) DeleteChannel(ctx context.Context, id uint) error {
	err := s.Repo.DeleteChannel(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: channel %d", ErrNotFound, id)
	}
	if err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Error("unindex_channel_failed", "channel_id", id, "error", err)
		}
	}
	ev := events.New(events.ChannelDeleted)
	ev.ChannelID = id
	publish(ctx, s.Events, events.TopicChannels, channelKey(id), ev)
	return nil
}

// SearchChannels runs a full-text query against the index. Without an index,
// or when the index fails, it falls back to the name substring filter.
func (s *CatalogService) SearchChannels(ctx context.Context, q string, limit int) ([]models.Channel, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fieldError("q", "q is required")
	}
	switch {
	case limit == 0:
		limit = DefaultSearchLimit
	case limit < 0 || limit > MaxSearchLimit:
		return nil, fieldError("limit", fmt.Sprintf("limit must be between 1 and %d", MaxSearchLimit))
	}

	if s.Index != nil {
		items, err := s.Index.Search(ctx, q, limit)
		if err == nil {
			return items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "error", err)
	}
	return s.Repo.ListChannels(ctx, repo.ChannelFilter{Search: &q, Limit: limit})
}

func (s *CatalogService) reindex(ctx context.Context, ch models.Channel) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, ch); err != nil {
		logging.FromContext(ctx).Error("index_channel_failed", "channel_id", ch.ID, "error", err)
	}
}

func channelKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
