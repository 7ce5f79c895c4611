package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"saasadmin/internal/cache"
	"saasadmin/internal/model"
	"saasadmin/internal/repository"
)

// clone deep-copies through JSON, as a round trip through Mongo or Redis would
func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

type stubCounters struct {
	mu   sync.Mutex
	next map[string]int64
}

func newStubCounters() *stubCounters {
	return &stubCounters{next: make(map[string]int64)}
}

func (c *stubCounters) Next(_ context.Context, seq string, n int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	first := c.next[seq] + 1
	c.next[seq] += n
	return first, nil
}

type stubFormRepo struct {
	mu    sync.Mutex
	forms map[int64]*model.Form

	// beforeUpdate runs at the start of Update, outside the lock
	beforeUpdate func()
}

func newStubFormRepo() *stubFormRepo {
	return &stubFormRepo{forms: make(map[int64]*model.Form)}
}

func (r *stubFormRepo) Create(_ context.Context, form *model.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms[form.ID] = clone(form)
	return nil
}

func (r *stubFormRepo) GetByID(_ context.Context, id int64) (*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.forms[id]), nil
}

func (r *stubFormRepo) GetByPublicKey(_ context.Context, publicKey string) (*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.forms {
		if f.PublicKey == publicKey && !f.Deleted() {
			return clone(f), nil
		}
	}
	return nil, nil
}

func (r *stubFormRepo) ListByOrganization(_ context.Context, orgID int64) ([]*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Form
	for _, f := range r.forms {
		if f.OrganizationID == orgID && !f.Deleted() {
			out = append(out, clone(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubFormRepo) Update(_ context.Context, form *model.Form) error {
	if hook := r.beforeUpdate; hook != nil {
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.forms[form.ID]
	if !ok || stored.Version != form.Version {
		return repository.ErrVersionConflict
	}
	form.Version++
	r.forms[form.ID] = clone(form)
	return nil
}

// touch simulates a write by another process
func (r *stubFormRepo) touch(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forms[id].Version++
}

func (r *stubFormRepo) SoftDelete(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.forms[id]; ok {
		f.MarkDeleted(at)
		f.Version++
	}
	return nil
}

type stubSubmissionRepo struct {
	mu          sync.Mutex
	subs        map[int64]*model.Submission
	scoreWrites int
}

func newStubSubmissionRepo() *stubSubmissionRepo {
	return &stubSubmissionRepo{subs: make(map[int64]*model.Submission)}
}

func (r *stubSubmissionRepo) Create(_ context.Context, sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := clone(sub)
	c.EmailKey = sub.EmailKey
	r.subs[sub.ID] = c
	return nil
}

func (r *stubSubmissionRepo) GetByID(_ context.Context, id int64) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok || sub.Deleted() {
		return nil, nil
	}
	return clone(sub), nil
}

func (r *stubSubmissionRepo) ExistsForRespondent(_ context.Context, formID int64, emailKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.FormID == formID && s.EmailKey == emailKey && !s.Deleted() {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubSubmissionRepo) active(formID int64) []*model.Submission {
	var out []*model.Submission
	for _, s := range r.subs {
		if s.FormID == formID && !s.Deleted() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubSubmissionRepo) ListByForm(_ context.Context, formID, afterID int64, limit int) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Submission
	for _, s := range r.active(formID) {
		if s.ID > afterID && len(out) < limit {
			out = append(out, clone(s))
		}
	}
	return out, nil
}

func (r *stubSubmissionRepo) ListRecent(_ context.Context, formID int64, offset, limit int) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.active(formID)
	var out []*model.Submission
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, clone(all[i]))
	}
	return out, nil
}

func (r *stubSubmissionRepo) CountByForm(_ context.Context, formID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.active(formID))), nil
}

func (r *stubSubmissionRepo) TopByForm(_ context.Context, formID int64, limit int) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.active(formID)
	sort.SliceStable(all, func(i, j int) bool { return all[i].TotalScore.GreaterThan(all[j].TotalScore) })
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]*model.Submission, len(all))
	for i, s := range all {
		out[i] = clone(s)
	}
	return out, nil
}

func (r *stubSubmissionRepo) UpdateScores(_ context.Context, subs []*model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range subs {
		stored := r.subs[s.ID]
		stored.TotalScore = s.TotalScore
		for i := range stored.Answers {
			stored.Answers[i].Score = s.Answers[i].Score
		}
		r.scoreWrites++
	}
	return nil
}

func (r *stubSubmissionRepo) SoftDelete(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subs[id]; ok {
		s.MarkDeleted(at)
	}
	return nil
}

type stubFormCache struct {
	mu         sync.Mutex
	forms      map[int64]*model.Form
	keys       map[string]int64
	invalidate int
}

func newStubFormCache() *stubFormCache {
	return &stubFormCache{forms: make(map[int64]*model.Form), keys: make(map[string]int64)}
}

func (c *stubFormCache) Get(_ context.Context, id int64) (*model.Form, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.forms[id]), nil
}

func (c *stubFormCache) Set(_ context.Context, form *model.Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forms[form.ID] = clone(form)
	return nil
}

func (c *stubFormCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.forms, id)
	c.invalidate++
	return nil
}

func (c *stubFormCache) GetIDByPublicKey(_ context.Context, publicKey string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[publicKey], nil
}

func (c *stubFormCache) SetPublicKey(_ context.Context, publicKey string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[publicKey] = id
	return nil
}

type stubLock struct {
	mu   sync.Mutex
	held map[string]string
}

func newStubLock() *stubLock {
	return &stubLock{held: make(map[string]string)}
}

func (l *stubLock) Acquire(_ context.Context, formID int64, emailKey string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := emailKey + "@" + decimal.NewFromInt(formID).String()
	if _, ok := l.held[key]; ok {
		return "", nil
	}
	l.held[key] = "token"
	return "token", nil
}

func (l *stubLock) Release(_ context.Context, formID int64, emailKey, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := emailKey + "@" + decimal.NewFromInt(formID).String()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

type stubBoard struct {
	mu     sync.Mutex
	scores map[int64]map[int64]decimal.Decimal
}

func newStubBoard() *stubBoard {
	return &stubBoard{scores: make(map[int64]map[int64]decimal.Decimal)}
}

// reset empties the board, as after a Redis flush
func (b *stubBoard) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scores = make(map[int64]map[int64]decimal.Decimal)
}

func (b *stubBoard) UpdateScore(_ context.Context, formID, submissionID int64, score decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scores[formID] == nil {
		b.scores[formID] = make(map[int64]decimal.Decimal)
	}
	b.scores[formID][submissionID] = score
	return nil
}

func (b *stubBoard) Remove(_ context.Context, formID, submissionID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.scores[formID], submissionID)
	return nil
}

func (b *stubBoard) ranked(formID int64) []cache.ScoreEntry {
	var entries []cache.ScoreEntry
	for id, score := range b.scores[formID] {
		entries = append(entries, cache.ScoreEntry{SubmissionID: id, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Score.Equal(entries[j].Score) {
			return entries[i].Score.GreaterThan(entries[j].Score)
		}
		return entries[i].SubmissionID < entries[j].SubmissionID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func (b *stubBoard) GetTop(_ context.Context, formID int64, limit int) ([]cache.ScoreEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.ranked(formID)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (b *stubBoard) GetRank(_ context.Context, formID, submissionID int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.ranked(formID) {
		if e.SubmissionID == submissionID {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

func (b *stubBoard) Replace(_ context.Context, formID int64, entries []cache.ScoreEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scores[formID] = make(map[int64]decimal.Decimal)
	for _, e := range entries {
		b.scores[formID][e.SubmissionID] = e.Score
	}
	return nil
}

type sentEvent struct {
	FormID  int64
	MsgType string
	Payload interface{}
}

type stubBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (b *stubBroadcaster) BroadcastToForm(formID int64, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{FormID: formID, MsgType: msgType, Payload: payload})
}

func (b *stubBroadcaster) DisconnectForm(int64) {}

func (b *stubBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.MsgType
	}
	return out
}

type stubScheduler struct {
	mu    sync.Mutex
	forms []int64
}

func (s *stubScheduler) ScheduleRecalculation(_ context.Context, formID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms = append(s.forms, formID)
	return nil
}
