package service

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Coach builds the profile context and remaining budget for a coaching
// adapter. Adapter failures and a missing adapter come back as ok=false;
// store failures as errors.
type Coach struct {
	ledger  *Ledger
	adapter CoachingAdapter
}

func NewCoach(ledger *Ledger, adapter CoachingAdapter) *Coach {
	return &Coach{ledger: ledger, adapter: adapter}
}

func (c *Coach) snapshot(now time.Time) (ProfileContext, int, error) {
	p, err := c.ledger.GetOrCreateProfile()
	if err != nil {
		return ProfileContext{}, 0, err
	}
	remaining, err := c.ledger.RemainingCalories(now)
	if err != nil {
		return ProfileContext{}, 0, err
	}
	return NewProfileContext(*p, now), remaining, nil
}

func (c *Coach) SuggestRecipe(ctx context.Context) (Suggestion, bool, error) {
	if c.adapter == nil {
		return Suggestion{}, false, nil
	}
	pc, remaining, err := c.snapshot(c.ledger.now())
	if err != nil {
		return Suggestion{}, false, err
	}
	s, err := c.adapter.SuggestRecipe(ctx, remaining, pc)
	if err != nil {
		log.Printf("[coach] recipe: %v", fmt.Errorf("%w: %v", ErrAdapter, err))
		return Suggestion{}, false, nil
	}
	return s, true, nil
}

func (c *Coach) SuggestWorkout(ctx context.Context) (Suggestion, bool, error) {
	if c.adapter == nil {
		return Suggestion{}, false, nil
	}
	pc, remaining, err := c.snapshot(c.ledger.now())
	if err != nil {
		return Suggestion{}, false, err
	}
	s, err := c.adapter.SuggestWorkout(ctx, pc, remaining)
	if err != nil {
		log.Printf("[coach] workout: %v", fmt.Errorf("%w: %v", ErrAdapter, err))
		return Suggestion{}, false, nil
	}
	return s, true, nil
}

func (c *Coach) Chat(ctx context.Context, history []ChatMessage, message string) (string, bool, error) {
	if c.adapter == nil {
		return "", false, nil
	}
	pc, _, err := c.snapshot(c.ledger.now())
	if err != nil {
		return "", false, err
	}
	reply, err := c.adapter.Chat(ctx, history, message, pc)
	if err != nil {
		log.Printf("[coach] chat: %v", fmt.Errorf("%w: %v", ErrAdapter, err))
		return "", false, nil
	}
	return reply, true, nil
}
