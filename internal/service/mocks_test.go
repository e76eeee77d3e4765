package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

// memCache is an in-memory cacheStore for tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	setErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}) error {
	if c.setErr != nil {
		return c.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memCache) PatchFields(_ context.Context, key string, fields map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := make(map[string]interface{})
	if raw, ok := c.entries[key]; ok {
		_ = json.Unmarshal(raw, &current)
	}
	for k, v := range fields {
		current[k] = v
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// fakeIdentity is a canned identityClient for tests.
type fakeIdentity struct {
	tokens           map[string]IdentityToken
	passwordUpdates  map[string]string
	updatePasswordOK bool
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		tokens:           make(map[string]IdentityToken),
		passwordUpdates:  make(map[string]string),
		updatePasswordOK: true,
	}
}

func (f *fakeIdentity) VerifyIDToken(_ context.Context, idToken string) (*IdentityToken, error) {
	token, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("token not recognised")
	}
	return &token, nil
}

func (f *fakeIdentity) UpdatePassword(_ context.Context, uid, newPassword string) error {
	if !f.updatePasswordOK {
		return errors.New("provider unavailable")
	}
	f.passwordUpdates[uid] = newPassword
	return nil
}

// staticStudentLookup resolves register numbers from a fixed map.
type staticStudentLookup struct {
	students map[string]*models.Student
}

func (l *staticStudentLookup) FindByRegisterNumber(_ context.Context, registerNumber string) (*models.Student, error) {
	student, ok := l.students[registerNumber]
	if !ok {
		return nil, docstore.ErrDocNotFound
	}
	return student, nil
}
