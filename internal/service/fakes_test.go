package service_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lipoic/lipoic-backend/internal/model"
	"github.com/lipoic/lipoic-backend/internal/oauth"
	"github.com/lipoic/lipoic-backend/internal/store"
	"github.com/lipoic/lipoic-backend/internal/token"
	"github.com/lipoic/lipoic-backend/pkg/email"
)

func newTestTokens(t *testing.T) *token.Service {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	privDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	svc, err := token.New(token.Config{
		PrivateKey: string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privDER})),
		PublicKey:  string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})),
	})
	require.NoError(t, err)
	return svc
}

// fakeUserStore is an in-memory UserStorage with the same set semantics as
// the MongoDB-backed store.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[bson.ObjectID]*model.User{}}
}

func (f *fakeUserStore) FindByID(_ context.Context, id bson.ObjectID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) AddConnect(_ context.Context, email string, connect model.ConnectedAccount, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email != email {
			continue
		}
		if !slices.Contains(u.LoginIPs, ip) {
			u.LoginIPs = append(u.LoginIPs, ip)
		}
		// connects are keyed by the (accountType, email) pair, not the full entry
		if !u.HasConnect(connect.AccountType, connect.Email) {
			u.Connects = append(u.Connects, connect)
		}
		return nil
	}
	return store.ErrNotFound
}

func (f *fakeUserStore) AddLoginIP(_ context.Context, id bson.ObjectID, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if !slices.Contains(u.LoginIPs, ip) {
		u.LoginIPs = append(u.LoginIPs, ip)
	}
	return nil
}

func (f *fakeUserStore) SetVerifiedEmail(_ context.Context, id bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.VerifiedEmail = true
	return nil
}

func (f *fakeUserStore) SetLastVerifyEmailTime(_ context.Context, id bson.ObjectID, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	tt := t.UTC()
	u.LastSentVerifyEmailTime = &tt
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id bson.ObjectID, upd store.ProfileUpdate, ip string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Modes != nil {
		u.Modes = upd.Modes
	}
	if upd.Locale != nil {
		u.Locale = *upd.Locale
	}
	if !slices.Contains(u.LoginIPs, ip) {
		u.LoginIPs = append(u.LoginIPs, ip)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) SetAvatar(_ context.Context, id bson.ObjectID, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Avatar = data
	return nil
}

func (f *fakeUserStore) ClearAvatar(_ context.Context, id bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Avatar = nil
	return nil
}

type fakeClassStore struct {
	mu      sync.Mutex
	classes map[bson.ObjectID]*model.Class
}

func newFakeClassStore() *fakeClassStore {
	return &fakeClassStore{classes: map[bson.ObjectID]*model.Class{}}
}

func (f *fakeClassStore) Create(_ context.Context, c *model.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	f.classes[c.ID] = &cp
	return nil
}

func (f *fakeClassStore) FindByID(_ context.Context, id bson.ObjectID) (*model.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.classes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClassStore) AddMember(_ context.Context, classID bson.ObjectID, member model.ClassMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.classes[classID]
	if !ok {
		return store.ErrNotFound
	}
	if !slices.Contains(c.Members, member) {
		c.Members = append(c.Members, member)
	}
	return nil
}

// fakeMailer records sent messages instead of delivering them.
type fakeMailer struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (f *fakeMailer) SendEmail(_ context.Context, params email.SendEmailParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, params)
	return nil
}

func (f *fakeMailer) lastSent(t *testing.T) email.SendEmailParams {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

// fakeFlow is a canned OAuthFlow.
type fakeFlow struct {
	provider    oauth.Provider
	access      oauth.AccessInfo
	account     oauth.AccountInfo
	exchangeErr error
	profileErr  error
}

func (f *fakeFlow) Provider() oauth.Provider { return f.provider }

func (f *fakeFlow) Exchange(context.Context, string) (oauth.AccessInfo, error) {
	return f.access, f.exchangeErr
}

func (f *fakeFlow) FetchProfile(context.Context, oauth.AccessInfo) (oauth.AccountInfo, error) {
	return f.account, f.profileErr
}
