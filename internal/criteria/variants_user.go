package criteria

import (
	"context"

	"merx/pkg/domain"
)

// userDefinition covers identity-state checks. The authenticated and
// anonymous operators test only the actor's state; is/is_not test
// membership of the actor's user id in the stored set, where an
// anonymous actor is never a member.
func userDefinition() Definition {
	return Definition{
		ContentType: "user",
		Name:        "User",
		Operators:   UserOperators,
		Kind:        ValueRefs,
		ParseRef: func(raw string) error {
			_, err := domain.ParseUserID(raw)
			return err
		},
		Evaluate: func(_ context.Context, c Criterion, ev *Evidence) (bool, error) {
			switch c.Operator {
			case OpAuthenticated:
				return ev.Actor.Authenticated(), nil
			case OpAnonymous:
				return !ev.Actor.Authenticated(), nil
			}
			if !ev.Actor.Authenticated() {
				return applyPolarity(c.Operator, false), nil
			}
			raw := refSet(c.Refs)[ev.Actor.UserID.String()]
			return applyPolarity(c.Operator, raw), nil
		},
	}
}
