package service

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/innerlight/circles-backend/internal/domain"
)

// DefaultEnergy label used until the actor picks one
const DefaultEnergy = "peaceful"

// energy labels are short lowercase words, e.g. "peaceful" or "heart-open"
var energyPattern = regexp.MustCompile(`^[a-z][a-z-]{0,31}$`)

// ValidEnergy reports whether label is an acceptable energy label
func ValidEnergy(label string) bool {
	return energyPattern.MatchString(label)
}

// ActorProvider exposes the authenticated user, "" when nobody is signed in
type ActorProvider interface {
	CurrentUserID(ctx context.Context) string
}

// EnergyProvider exposes the actor's current energy label
type EnergyProvider interface {
	CurrentEnergy(ctx context.Context) string
}

// RewardGranter awards XP. Callers ignore the result apart from logging.
type RewardGranter interface {
	Grant(ctx context.Context, grant domain.RewardGrant) error
}

// StaticActor always reports the same user
type StaticActor string

func (a StaticActor) CurrentUserID(_ context.Context) string {
	return string(a)
}

type energyOverrideKey struct{}

// WithEnergyOverride attaches a request-scoped energy label that wins over the stored one.
// Labels that fail ValidEnergy are ignored.
func WithEnergyOverride(ctx context.Context, label string) context.Context {
	label = strings.TrimSpace(label)
	if !ValidEnergy(label) {
		return ctx
	}
	return context.WithValue(ctx, energyOverrideKey{}, label)
}

func energyOverride(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(energyOverrideKey{}).(string); ok {
		return v
	}
	return ""
}

// MutableEnergy is a settable EnergyProvider
type MutableEnergy struct {
	label string
	mu    sync.RWMutex
}

// NewMutableEnergy starts at label, or DefaultEnergy when empty
func NewMutableEnergy(label string) *MutableEnergy {
	if label == "" {
		label = DefaultEnergy
	}
	return &MutableEnergy{label: label}
}

func (e *MutableEnergy) CurrentEnergy(ctx context.Context) string {
	if v := energyOverride(ctx); v != "" {
		return v
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.label
}

// Set replaces the stored label
func (e *MutableEnergy) Set(label string) {
	e.mu.Lock()
	e.label = label
	e.mu.Unlock()
}

// RewardPolicy XP amounts per qualifying action
type RewardPolicy struct {
	TextMessage          int
	RichMessage          int
	Meditation           int
	EventCreated         int
	EventJoined          int
	GrantOnDuplicateJoin bool
}

// DefaultRewardPolicy the stock amounts
func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{
		TextMessage:          5,
		RichMessage:          15,
		Meditation:           25,
		EventCreated:         50,
		EventJoined:          10,
		GrantOnDuplicateJoin: true,
	}
}

// messageReward amount and reason for a message of the given type
func (p RewardPolicy) messageReward(messageType string) (int, string) {
	if messageType == domain.MessageTypeText {
		return p.TextMessage, domain.RewardReasonMessage
	}
	return p.RichMessage, domain.RewardReasonRichMessage
}
