package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	var found *domain.User
	for _, u := range r.users {
		if u.Username == username && (found == nil || u.ID < found.ID) {
			found = u
		}
	}
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(found), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.ID != user.ID && u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubReportRepo struct {
	reports     map[int64]*domain.Report
	nextID      int64
	completeErr error
	failErr     error
	// beforeComplete runs inside Complete before the row is checked.
	beforeComplete func(id int64)
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{reports: make(map[int64]*domain.Report)}
}

func cloneReport(r *domain.Report) *domain.Report {
	if r == nil {
		return nil
	}
	clone := *r
	if r.FilePath != nil {
		path := *r.FilePath
		clone.FilePath = &path
	}
	return &clone
}

func (r *stubReportRepo) Create(_ context.Context, report *domain.Report) (*domain.Report, error) {
	r.nextID++
	stored := cloneReport(report)
	stored.ID = r.nextID
	r.reports[stored.ID] = stored
	return cloneReport(stored), nil
}

func (r *stubReportRepo) FindByID(_ context.Context, id int64) (*domain.Report, error) {
	rep, ok := r.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return cloneReport(rep), nil
}

func (r *stubReportRepo) List(_ context.Context, f ports.ReportFilter) ([]*domain.Report, int64, error) {
	var all []*domain.Report
	for _, rep := range r.reports {
		if f.UserID != 0 && rep.UserID != f.UserID {
			continue
		}
		all = append(all, cloneReport(rep))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

// Complete and Fail reject a finished context like a database driver would.
func (r *stubReportRepo) Complete(ctx context.Context, id int64, filePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.beforeComplete != nil {
		r.beforeComplete(id)
	}
	if r.completeErr != nil {
		return r.completeErr
	}
	rep, ok := r.reports[id]
	if !ok || rep.Status != domain.ReportPending {
		return domain.ErrReportNotFound
	}
	rep.Status = domain.ReportCompleted
	rep.FilePath = &filePath
	return nil
}

func (r *stubReportRepo) Fail(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.failErr != nil {
		return r.failErr
	}
	rep, ok := r.reports[id]
	if !ok || rep.Status != domain.ReportPending {
		return domain.ErrReportNotFound
	}
	rep.Status = domain.ReportFailed
	rep.FilePath = nil
	return nil
}

func (r *stubReportRepo) Delete(_ context.Context, id int64) (*domain.Report, error) {
	rep, ok := r.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	delete(r.reports, id)
	return rep, nil
}

func (r *stubReportRepo) DeleteByUser(_ context.Context, userID int64) ([]*domain.Report, error) {
	var out []*domain.Report
	for id, rep := range r.reports {
		if rep.UserID == userID {
			out = append(out, rep)
			delete(r.reports, id)
		}
	}
	return out, nil
}

type stubBlacklist struct {
	entries   map[string]domain.BlacklistedToken
	removed   []string
	findErr   error
	removeErr error
}

func newStubBlacklist() *stubBlacklist {
	return &stubBlacklist{entries: make(map[string]domain.BlacklistedToken)}
}

func (b *stubBlacklist) Add(_ context.Context, entry domain.BlacklistedToken) error {
	if _, ok := b.entries[entry.Token]; ok {
		return nil
	}
	b.entries[entry.Token] = entry
	return nil
}

func (b *stubBlacklist) Find(_ context.Context, token string) (*domain.BlacklistedToken, error) {
	if b.findErr != nil {
		return nil, b.findErr
	}
	entry, ok := b.entries[token]
	if !ok {
		return nil, domain.ErrNotBlacklisted
	}
	return &entry, nil
}

func (b *stubBlacklist) Remove(_ context.Context, token string) error {
	b.removed = append(b.removed, token)
	if b.removeErr != nil {
		return b.removeErr
	}
	delete(b.entries, token)
	return nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type stubWeather struct {
	currentFn func(ctx context.Context, city string) (*domain.WeatherConditions, error)
	calls     []string
}

func (w *stubWeather) Current(ctx context.Context, city string) (*domain.WeatherConditions, error) {
	w.calls = append(w.calls, city)
	return w.currentFn(ctx, city)
}

type stubNotifier struct {
	sent []ports.ReportReadyNotification
	err  error
}

func (n *stubNotifier) SendReportReady(_ context.Context, msg ports.ReportReadyNotification) error {
	n.sent = append(n.sent, msg)
	return n.err
}

// memArtifacts keeps artifacts in memory keyed by name.
type memArtifacts struct {
	files     map[string][]byte
	removed   []string
	removeErr error
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{files: make(map[string][]byte)}
}

func (m *memArtifacts) Save(_ context.Context, name string, write func(w io.Writer) error) (string, error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return "", err
	}
	path := "mem/" + name
	m.files[path] = buf.Bytes()
	return path, nil
}

func (m *memArtifacts) Open(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memArtifacts) Remove(_ context.Context, path string) error {
	m.removed = append(m.removed, path)
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.files, path)
	return nil
}

// recordingScheduler captures submitted jobs without running them.
type recordingScheduler struct {
	jobs []ports.ReportJob
	err  error
}

func (s *recordingScheduler) Submit(job ports.ReportJob) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// inlineScheduler runs jobs synchronously through a runner.
type inlineScheduler struct {
	runner ports.ReportRunner
}

func (s inlineScheduler) Submit(job ports.ReportJob) error {
	s.runner.Run(context.Background(), job)
	return nil
}

var errBoom = errors.New("boom")
