package service

import (
	"context"
	"strings"
	"time"
)

const defaultPaceInterval = 50 * time.Millisecond

// Pacer reveals a finalized message word by word at a fixed cadence, so a
// synchronous backend response still reads like incremental delivery.
type Pacer struct {
	interval time.Duration
}

func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = defaultPaceInterval
	}
	return &Pacer{interval: interval}
}

// Pace emits cumulative word-prefix states of text through emit, one word
// per tick. alive is checked before every step; once it reports false no
// further emit happens and Pace returns ErrCanceled. A text of W words
// produces exactly W states, the last one equal to the full text.
func (p *Pacer) Pace(ctx context.Context, text string, alive func() bool, emit func(partial string) error) error {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var revealed strings.Builder
	for i, word := range words {
		select {
		case <-ctx.Done():
			return ErrCanceled
		case <-ticker.C:
		}

		if !alive() {
			return ErrCanceled
		}

		if i > 0 {
			revealed.WriteByte(' ')
		}
		revealed.WriteString(word)

		if err := emit(revealed.String()); err != nil {
			return err
		}
	}

	return nil
}
