package minter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/service/persist"
	"github.com/minters-xyz/go-minters/service/story"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUploader hands out sequential CIDs and remembers every pinned payload
type fakeUploader struct {
	uploads map[string][]byte
	next    int
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: map[string][]byte{}}
}

func (f *fakeUploader) UploadBytes(ctx context.Context, data []byte, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next++
	cid := fmt.Sprintf("QmFake%d", f.next)
	f.uploads[name] = data
	return cid, nil
}

func (f *fakeUploader) UploadJSON(ctx context.Context, v any, name string) (string, error) {
	marshalled, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return f.UploadBytes(ctx, marshalled, name)
}

// fakeRegistrar records calls and returns canned results
type fakeRegistrar struct {
	registerResult   story.RegisterResult
	registerErr      error
	derivativeResult story.RegisterResult
	derivativeErr    error
	attachedTermsIDs []string
	attachErr        error
	mintResult       story.MintResult
	mintErr          error
	disputeResult    story.DisputeResult
	disputeErr       error

	mintCalls    int
	disputeCalls int
}

func (f *fakeRegistrar) RegisterIPAsset(ctx context.Context, refs story.MetadataRefs, terms story.LicenseTerms) (story.RegisterResult, error) {
	return f.registerResult, f.registerErr
}

func (f *fakeRegistrar) RegisterDerivative(ctx context.Context, refs story.MetadataRefs, parentIPID, licenseTermsID string) (story.RegisterResult, error) {
	return f.derivativeResult, f.derivativeErr
}

func (f *fakeRegistrar) RegisterPILTermsAndAttach(ctx context.Context, ipID string, terms story.LicenseTerms) ([]string, error) {
	return f.attachedTermsIDs, f.attachErr
}

func (f *fakeRegistrar) MintLicenseTokens(ctx context.Context, ipID, licenseTermsID, receiver string, amount int64) (story.MintResult, error) {
	f.mintCalls++
	return f.mintResult, f.mintErr
}

func (f *fakeRegistrar) RaiseDispute(ctx context.Context, targetIPID, evidenceCID, targetTag string) (story.DisputeResult, error) {
	f.disputeCalls++
	return f.disputeResult, f.disputeErr
}

func fakeStoryF(r registrar) registrarFactory {
	return func(ctx context.Context) (registrar, error) {
		return r, nil
	}
}

// fakeUserRepo is an in-memory user store
type fakeUserRepo struct {
	users    map[persist.DBID]persist.User
	appended []persist.RegisteredIP
	addErr   error
	getErr   error
}

func newFakeUserRepo(users ...persist.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[persist.DBID]persist.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id persist.DBID) (persist.User, error) {
	if f.getErr != nil {
		return persist.User{}, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return persist.User{}, persist.ErrUserNotFound{ID: id}
	}
	return u, nil
}

func (f *fakeUserRepo) GetByWalletAddress(ctx context.Context, addr persist.Address) (persist.User, error) {
	for _, u := range f.users {
		if u.WalletAddress == addr {
			return u, nil
		}
	}
	return persist.User{}, persist.ErrUserNotFound{WalletAddress: addr}
}

func (f *fakeUserRepo) GetAll(ctx context.Context) ([]persist.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	users := make([]persist.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserRepo) AddRegisteredIP(ctx context.Context, id persist.DBID, ip persist.RegisteredIP) error {
	if f.addErr != nil {
		return f.addErr
	}
	u := f.users[id]
	u.RegisteredIPs = append(u.RegisteredIPs, ip)
	f.users[id] = u
	f.appended = append(f.appended, ip)
	return nil
}

// fakeDisputeRepo records created disputes
type fakeDisputeRepo struct {
	created []persist.Dispute
	err     error
}

func (f *fakeDisputeRepo) Create(ctx context.Context, d persist.Dispute) (persist.DBID, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, d)
	return persist.GenerateID(), nil
}

// fakeSender records sent mail
type fakeSender struct {
	configured    bool
	sent          [][]string
	notifications []persist.Dispute
	err           error
}

func (f *fakeSender) Configured() bool {
	return f.configured
}

func (f *fakeSender) Send(ctx context.Context, recipients []string, subject, htmlContent string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, recipients)
	return nil
}

func (f *fakeSender) SendDisputeNotification(ctx context.Context, recipient persist.Email, dispute persist.Dispute) error {
	if f.err != nil {
		return f.err
	}
	f.notifications = append(f.notifications, dispute)
	return nil
}

// fakeChecker is a usageChecker with fixed answers
type fakeChecker struct {
	count    int
	checkErr error
	countErr error
	limit    int
}

func (f *fakeChecker) Count(ctx context.Context, wallet persist.Address, email persist.Email) (int, error) {
	return f.count, f.countErr
}

func (f *fakeChecker) Check(ctx context.Context, wallet persist.Address, email persist.Email) error {
	return f.checkErr
}

func (f *fakeChecker) Remaining(count int) int {
	if remaining := f.limit - count; remaining > 0 {
		return remaining
	}
	return 0
}

func (f *fakeChecker) Limit() int {
	return f.limit
}

// fakeGenerator returns fixed bytes
type fakeGenerator struct {
	image []byte
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	return f.image, f.err
}

var errBoom = errors.New("boom")

func doJSON(handler gin.HandlerFunc, method, path string, body any) *httptest.ResponseRecorder {
	route, _, _ := strings.Cut(path, "?")

	router := gin.New()
	router.Handle(method, route, handler)

	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response body %q: %s", w.Body.String(), err)
	}
	return out
}
