// Package submit records form submissions: volunteer applications, auth
// attempts and newsletter signups.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/config"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown submissions driver")

// Kind names what was submitted.
type Kind string

const (
	KindVolunteer    Kind = "volunteer"
	KindSignUp       Kind = "signup"
	KindSignIn       Kind = "signin"
	KindSubscription Kind = "subscription"
)

// Submission is one stored record. Payload is the JSON encoding of the
// submitted value; fields tagged json:"-" never reach it.
type Submission struct {
	ID        string
	Kind      Kind
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Submitter accepts submissions and returns the id assigned to each.
type Submitter interface {
	Submit(ctx context.Context, kind Kind, payload any) (string, error)
	Close() error
}

// Open returns the submitter selected by cfg.Driver.
func Open(ctx context.Context, cfg config.SubmissionsConfig, log *zap.Logger) (Submitter, error) {
	switch cfg.Driver {
	case "", "log":
		return NewLogSubmitter(log), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.DSN, log)
	case "postgres":
		return OpenPostgres(ctx, cfg.DSN, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func newSubmission(kind Kind, payload any, now time.Time) (Submission, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Submission{}, fmt.Errorf("encode %s submission: %w", kind, err)
	}
	return Submission{ID: uuid.NewString(), Kind: kind, Payload: raw, CreatedAt: now.UTC()}, nil
}

// LogSubmitter only writes submissions to the application log.
type LogSubmitter struct {
	log *zap.Logger
	now func() time.Time
}

func NewLogSubmitter(log *zap.Logger) *LogSubmitter {
	return &LogSubmitter{log: log, now: time.Now}
}

func (s *LogSubmitter) Submit(ctx context.Context, kind Kind, payload any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sub, err := newSubmission(kind, payload, s.now())
	if err != nil {
		return "", err
	}
	s.log.Info("submission received",
		zap.String("id", sub.ID),
		zap.String("kind", string(sub.Kind)),
		zap.Any("payload", sub.Payload),
	)
	return sub.ID, nil
}

func (s *LogSubmitter) Close() error { return nil }
