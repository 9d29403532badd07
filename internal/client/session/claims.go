package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/worldacross/membership/internal/client/models"
)

// UserClaim is the claim that carries the member profile.
const UserClaim = "user"

// ErrNoUserClaim is returned when verified claims do not describe a member.
var ErrNoUserClaim = errors.New("credential has no user claim")

// UserFromClaims extracts the member embedded in verified claims.
func UserFromClaims(claims map[string]any) (models.User, error) {
	raw, ok := claims[UserClaim]
	if !ok || raw == nil {
		return models.User{}, ErrNoUserClaim
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return models.User{}, fmt.Errorf("encode user claim: %w", err)
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrNoUserClaim, err)
	}
	if u.ID == 0 {
		return models.User{}, ErrNoUserClaim
	}
	return u, nil
}

func claimsFor(u models.User) map[string]any {
	return map[string]any{UserClaim: u}
}
