package service

// AuthGate answers whether a user may enter edit mode. An empty allow-list denies everyone.
type AuthGate struct {
	allowed map[int64]struct{}
}

// NewAuthGate builds a gate from the configured operator ids. Zero ids are ignored.
func NewAuthGate(operatorIDs []int64) *AuthGate {
	allowed := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		if id == 0 {
			continue
		}
		allowed[id] = struct{}{}
	}
	return &AuthGate{allowed: allowed}
}

// IsAuthorized reports whether userID belongs to the allow-list.
func (g *AuthGate) IsAuthorized(userID int64) bool {
	if g == nil {
		return false
	}
	_, ok := g.allowed[userID]
	return ok
}
