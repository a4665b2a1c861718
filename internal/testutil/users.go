package testutil

import "pigmea-go/internal/history"

// StaticUserProvider always returns the same user. Set Anonymous to
// simulate an unauthenticated session.
type StaticUserProvider struct {
	User      history.User
	Anonymous bool
}

func NewStaticUserProvider(id, username string) *StaticUserProvider {
	return &StaticUserProvider{
		User: history.User{ID: id, Username: username},
	}
}

func (p *StaticUserProvider) CurrentUser() (history.User, bool) {
	if p.Anonymous {
		return history.User{}, false
	}
	return p.User, true
}
