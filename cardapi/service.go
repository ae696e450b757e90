package cardapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alovak/cardflow-gateway/card"
	"github.com/alovak/cardflow-gateway/cardapi/models"
	"github.com/alovak/cardflow-gateway/internal/expiry"
	"github.com/alovak/cardflow-gateway/wire"
	"golang.org/x/exp/slog"
)

var (
	ErrInvalidInput       = errors.New("invalid card input")
	ErrTokenizingDisabled = errors.New("tokenization is not configured")
)

// Tokenizer stores a card with a payment gateway. *spreedly.Client is one.
type Tokenizer interface {
	CreateCreditCard(ctx context.Context, c *card.Card, data map[string]any) (*wire.Record, error)
}

type Service struct {
	policy    card.MatchPolicy
	codec     wire.Codec
	tokenizer Tokenizer
	logger    *slog.Logger
	now       func() time.Time
}

// NewService returns a service for cfg. tokenizer may be nil.
func NewService(logger *slog.Logger, cfg *Config, tokenizer Tokenizer) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	policy, err := card.ParseMatchPolicy(cfg.MatchPolicy)
	if err != nil {
		return nil, fmt.Errorf("match policy: %w", err)
	}

	return &Service{
		policy:    policy,
		codec:     wire.XML(),
		tokenizer: tokenizer,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Card builds and classifies the card described by req.
func (s *Service) Card(req models.ClassifyRequest) (*card.Card, error) {
	mode, err := card.ParseMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	month, year := req.Month, req.Year
	if req.Expiry != "" && month == "" && year == "" {
		yymm, err := expiry.ParseCardFace(req.Expiry)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		year, month = yymm[:2], yymm[2:]
	}

	var in card.Input
	switch mode {
	case card.ModeTrack:
		if req.Track == "" {
			return nil, fmt.Errorf("%w: track mode needs track data", ErrInvalidInput)
		}
		in = card.TrackData(req.Track)
	case card.ModeCompact:
		in = card.CompactFields(req.HolderName, req.Email, req.Number, month, year, req.CVC)
	default:
		in = card.FullFields(req.FirstName, req.LastName, req.Email, req.Number, month, year, req.CVC)
	}

	c := card.New(in, card.WithMatchPolicy(s.policy))
	s.logger.Debug("card classified", slog.String("mode", mode.String()), slog.Any("card", c))
	return c, nil
}

// Summary is the client safe view of c.
func (s *Service) Summary(c *card.Card) models.CardSummary {
	out := models.CardSummary{
		Number:          c.Masked(),
		Network:         string(c.Network()),
		Valid:           c.Valid(),
		HolderName:      c.HolderName,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Email:           c.Email,
		ExpirationMonth: c.ExpirationMonth(),
		ExpirationYear:  c.ExpirationYear(),
		CardPresent:     c.TrackData() != "",
	}
	if expired, err := c.Expired(s.now()); err == nil {
		out.Expired = &expired
	}
	return out
}

func (s *Service) Classify(req models.ClassifyRequest) (models.CardSummary, error) {
	c, err := s.Card(req)
	if err != nil {
		return models.CardSummary{}, err
	}
	return s.Summary(c), nil
}

// Decode turns a markup document into camelized values. A non empty root
// unwraps that key and fails with *wire.MissingRootError when it is absent.
func (s *Service) Decode(body []byte, root string) (any, error) {
	v, err := s.codec.Decode(body)
	if err != nil {
		return nil, err
	}
	if root == "" {
		return v, nil
	}
	return wire.ExtractRoot(wire.Camelize(root))(v)
}

func (s *Service) Tokenize(ctx context.Context, req models.TokenizeRequest) (*models.TokenizeResponse, error) {
	if s.tokenizer == nil {
		return nil, ErrTokenizingDisabled
	}
	c, err := s.Card(req.ClassifyRequest)
	if err != nil {
		return nil, err
	}
	if !c.Valid() {
		return nil, fmt.Errorf("%w: card number failed validation", ErrInvalidInput)
	}

	result, err := s.tokenizer.CreateCreditCard(ctx, c, req.Data)
	if err != nil {
		return nil, fmt.Errorf("tokenizing card: %w", err)
	}
	s.logger.Info("card tokenized", slog.Any("card", c))

	return &models.TokenizeResponse{Card: s.Summary(c), Result: result}, nil
}
