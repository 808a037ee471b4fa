package profilesvc

import (
	"context"
	"sync"

	"github.com/trezcool/masomo-portal/core/access"
)

// DummyService is an in-memory access.ProfileClient for tests and local runs.
type DummyService struct {
	mu      sync.Mutex
	role    access.Role
	err     error
	fetches int
}

var _ access.ProfileClient = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{err: access.ErrNoRole}
}

func (svc *DummyService) FetchRole(context.Context, string) (access.Role, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.fetches++
	if svc.err != nil {
		return access.RoleUnassigned, svc.err
	}
	return svc.role, nil
}

// Returns makes every subsequent fetch resolve to role.
func (svc *DummyService) Returns(role access.Role) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.role, svc.err = role, nil
}

// Fail makes every subsequent fetch return err.
func (svc *DummyService) Fail(err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.err = err
}

// FetchCount returns the number of FetchRole calls seen so far.
func (svc *DummyService) FetchCount() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.fetches
}
