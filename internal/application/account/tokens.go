package account

import (
	"errors"
	"fmt"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

const DefaultAccessTokenExpiry = 900 // 15 min

// Session is what a successful sign-up or sign-in hands back to the client.
type Session struct {
	UserID      domain.UserID
	Email       string
	AccessToken string
	ExpiresIn   int64
	Profile     *domain.UserProfile
}

// LockedError reports an email in its sign-in cooldown.
type LockedError struct {
	RetryAfterSeconds int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s: retry after %ds", domerrors.ErrAccountLocked, e.RetryAfterSeconds)
}

func (e *LockedError) Is(target error) bool { return target == domerrors.ErrAccountLocked }

// RetryAfter extracts the cooldown from a LockedError anywhere in err's chain.
func RetryAfter(err error) (int, bool) {
	var le *LockedError
	if errors.As(err, &le) {
		return le.RetryAfterSeconds, true
	}
	return 0, false
}

func issue(issuer ports.TokenIssuer, userID domain.UserID, email string, exp int64) (*Session, error) {
	token, _, err := issuer.IssueAccessToken(userID.String(), email, exp)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: userID, Email: email, AccessToken: token, ExpiresIn: exp}, nil
}
