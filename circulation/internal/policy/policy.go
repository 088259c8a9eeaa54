package policy

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
)

var ErrUnknownClass = errors.New("no policy for membership class")

type Provider interface {
	PolicyFor(ctx context.Context, class model.MembershipClass) (model.Policy, error)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type static struct {
	policies map[model.MembershipClass]model.Policy
}

func NewStatic(policies map[model.MembershipClass]model.Policy) Provider {
	cp := make(map[model.MembershipClass]model.Policy, len(policies))
	for k, v := range policies {
		cp[k] = v
	}
	return &static{policies: cp}
}

func (s *static) PolicyFor(_ context.Context, class model.MembershipClass) (model.Policy, error) {
	p, ok := s.policies[class]
	if !ok {
		return model.Policy{}, errors.Wrapf(ErrUnknownClass, "class %q", class)
	}
	return p, nil
}

// NoticeHorizon is how far past now a due date may lie and still produce a due-soon notice
// under any class policy. It is never shorter than a day, since the due-day notice fires at
// the start of that calendar day.
func NoticeHorizon(ctx context.Context, p Provider) (time.Duration, error) {
	horizon := 24 * time.Hour
	for _, class := range model.MembershipClasses {
		pol, err := p.PolicyFor(ctx, class)
		if err != nil {
			if errors.Is(err, ErrUnknownClass) {
				continue
			}
			return 0, err
		}
		if pol.DueSoonLead > horizon {
			horizon = pol.DueSoonLead
		}
	}
	return horizon, nil
}

func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrap(err, "library timezone")
	}
	return loc, nil
}
