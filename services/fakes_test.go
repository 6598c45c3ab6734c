package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ishikisiko/match-telemetry/models"
	"github.com/ishikisiko/match-telemetry/repositories"
)

// memDB is an in-memory stand-in for the postgres store. failCreate lets a
// test inject an error on a given insert.
type memDB struct {
	mu     sync.Mutex
	nextID int

	users   []models.User
	matches []models.Match
	phases  []models.Phase
	events  []models.Event
	ttd     []models.TTDSample
	voice   []models.VoiceTurn
	combos  []models.Combo

	failCreate func(table string) error
}

type memSnapshot struct {
	nextID  int
	users   []models.User
	matches []models.Match
	phases  []models.Phase
	events  []models.Event
	ttd     []models.TTDSample
	voice   []models.VoiceTurn
	combos  []models.Combo
}

func newMemDB() *memDB {
	return &memDB{}
}

func (m *memDB) store() *repositories.Store {
	return &repositories.Store{
		Users:      memUsers{m},
		Matches:    memMatches{m},
		Phases:     memPhases{m},
		Events:     memEvents{m},
		TTDSamples: memTTD{m},
		VoiceTurns: memVoice{m},
		Combos:     memCombos{m},
	}
}

// WithTx restores the pre-call state when fn fails.
func (m *memDB) WithTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.mu.Lock()
	snap := memSnapshot{
		nextID:  m.nextID,
		users:   append([]models.User(nil), m.users...),
		matches: append([]models.Match(nil), m.matches...),
		phases:  append([]models.Phase(nil), m.phases...),
		events:  append([]models.Event(nil), m.events...),
		ttd:     append([]models.TTDSample(nil), m.ttd...),
		voice:   append([]models.VoiceTurn(nil), m.voice...),
		combos:  append([]models.Combo(nil), m.combos...),
	}
	m.mu.Unlock()

	if err := fn(nil); err != nil {
		m.mu.Lock()
		m.nextID = snap.nextID
		m.users, m.matches, m.phases, m.events = snap.users, snap.matches, snap.phases, snap.events
		m.ttd, m.voice, m.combos = snap.ttd, snap.voice, snap.combos
		m.mu.Unlock()
		return err
	}
	return nil
}

// insert assigns an id after the injected failure check. Callers hold mu.
func (m *memDB) insert(table string) (int, error) {
	if m.failCreate != nil {
		if err := m.failCreate(table); err != nil {
			return 0, err
		}
	}
	m.nextID++
	return m.nextID, nil
}

func (m *memDB) matchExists(id int) bool {
	for _, match := range m.matches {
		if match.ID == id {
			return true
		}
	}
	return false
}

func (m *memDB) ownerOf(matchID int) int {
	for _, match := range m.matches {
		if match.ID == matchID {
			return match.OwnerID
		}
	}
	return 0
}

func (m *memDB) seedUser(nickname string, role models.UserRole) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user := models.User{ID: m.nextID, Nickname: nickname, Email: nickname + "@example.test", Role: role}
	m.users = append(m.users, user)
	return user
}

func (m *memDB) counts() (matches, phases, events, ttd, voice, combos int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matches), len(m.phases), len(m.events), len(m.ttd), len(m.voice), len(m.combos)
}

func (m *memDB) roundLevelSamples(ownerID int) []models.TTDSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.TTDSample, 0)
	for _, s := range m.ttd {
		if s.Metadata.Level == models.TTDLevelRound && m.ownerOf(s.MatchID) == ownerID {
			out = append(out, s)
		}
	}
	return out
}

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if u.Nickname == user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	id, err := r.db.insert("users")
	if err != nil {
		return err
	}
	user.ID = id
	r.db.users = append(r.db.users, *user)
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r memUsers) GetByKey(_ context.Context, key string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Nickname == key || strings.EqualFold(u.Email, key) })
}

func (r memUsers) find(match func(models.User) bool) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

type memMatches struct{ db *memDB }

func (r memMatches) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	id, err := r.db.insert("matches")
	if err != nil {
		return err
	}
	match.ID = id
	r.db.matches = append(r.db.matches, *match)
	return nil
}

func (r memMatches) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, m := range r.db.matches {
		if m.ID == id {
			found := m
			return &found, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r memMatches) ListRecentByOwner(ctx context.Context, ownerID int, limit int) ([]models.Match, error) {
	all, _ := r.ListByOwner(ctx, ownerID)
	sort.SliceStable(all, func(i, j int) bool { return all[i].StartTime.After(all[j].StartTime) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memMatches) ListByOwner(_ context.Context, ownerID int) ([]models.Match, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range r.db.matches {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r memMatches) UpdateMetadata(_ context.Context, _ repositories.SQLExecutor, id int, metadata models.MatchMetadata) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.matches {
		if r.db.matches[i].ID == id {
			r.db.matches[i].Metadata = metadata
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r memMatches) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.matches {
		if r.db.matches[i].ID == id {
			r.db.matches = append(r.db.matches[:i], r.db.matches[i+1:]...)
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

type memPhases struct{ db *memDB }

func (r memPhases) Create(_ context.Context, _ repositories.SQLExecutor, phase *models.Phase) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.matchExists(phase.MatchID) {
		return repositories.ErrMatchInvalid
	}
	id, err := r.db.insert("phases")
	if err != nil {
		return err
	}
	phase.ID = id
	r.db.phases = append(r.db.phases, *phase)
	return nil
}

func (r memPhases) GetByID(_ context.Context, id int) (*models.Phase, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.phases {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, repositories.ErrPhaseNotFound
}

func (r memPhases) ListByMatch(_ context.Context, matchID int) ([]models.Phase, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Phase, 0)
	for _, p := range r.db.phases {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r memPhases) DeleteByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.phases[:0]
	var n int64
	for _, p := range r.db.phases {
		if p.MatchID == matchID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	r.db.phases = kept
	return n, nil
}

type memEvents struct{ db *memDB }

func (r memEvents) Create(_ context.Context, _ repositories.SQLExecutor, event *models.Event) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.matchExists(event.MatchID) {
		return repositories.ErrMatchInvalid
	}
	id, err := r.db.insert("events")
	if err != nil {
		return err
	}
	event.ID = id
	r.db.events = append(r.db.events, *event)
	return nil
}

func (r memEvents) GetByID(_ context.Context, id int) (*models.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.events {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (r memEvents) ListByMatch(_ context.Context, matchID int) ([]models.Event, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Event, 0)
	for _, e := range r.db.events {
		if e.MatchID == matchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memEvents) DeleteByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.events[:0]
	var n int64
	for _, e := range r.db.events {
		if e.MatchID == matchID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.db.events = kept
	return n, nil
}

type memTTD struct{ db *memDB }

func (r memTTD) Create(_ context.Context, _ repositories.SQLExecutor, sample *models.TTDSample) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.matchExists(sample.MatchID) {
		return repositories.ErrMatchInvalid
	}
	id, err := r.db.insert("ttd_samples")
	if err != nil {
		return err
	}
	sample.ID = id
	r.db.ttd = append(r.db.ttd, *sample)
	return nil
}

func (r memTTD) GetByID(_ context.Context, id int) (*models.TTDSample, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.ttd {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, repositories.ErrTTDSampleNotFound
}

func (r memTTD) ListByMatch(_ context.Context, matchID int) ([]models.TTDSample, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.TTDSample, 0)
	for _, s := range r.db.ttd {
		if s.MatchID == matchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memTTD) ListByLevel(_ context.Context, ownerID int, level string) ([]models.TTDSample, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.TTDSample, 0)
	for _, s := range r.db.ttd {
		if s.Metadata.Level == level && r.db.ownerOf(s.MatchID) == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memTTD) DeleteByLevel(_ context.Context, _ repositories.SQLExecutor, ownerID int, level string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := make([]models.TTDSample, 0, len(r.db.ttd))
	var n int64
	for _, s := range r.db.ttd {
		if s.Metadata.Level == level && r.db.ownerOf(s.MatchID) == ownerID {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.db.ttd = kept
	return n, nil
}

func (r memTTD) DeleteByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := make([]models.TTDSample, 0, len(r.db.ttd))
	var n int64
	for _, s := range r.db.ttd {
		if s.MatchID == matchID {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.db.ttd = kept
	return n, nil
}

type memVoice struct{ db *memDB }

func (r memVoice) Create(_ context.Context, _ repositories.SQLExecutor, turn *models.VoiceTurn) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.matchExists(turn.MatchID) {
		return repositories.ErrMatchInvalid
	}
	id, err := r.db.insert("voice_turns")
	if err != nil {
		return err
	}
	turn.ID = id
	r.db.voice = append(r.db.voice, *turn)
	return nil
}

func (r memVoice) GetByID(_ context.Context, id int) (*models.VoiceTurn, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, v := range r.db.voice {
		if v.ID == id {
			found := v
			return &found, nil
		}
	}
	return nil, repositories.ErrVoiceTurnNotFound
}

func (r memVoice) ListByMatch(_ context.Context, matchID int) ([]models.VoiceTurn, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.VoiceTurn, 0)
	for _, v := range r.db.voice {
		if v.MatchID == matchID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r memVoice) DeleteByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := make([]models.VoiceTurn, 0, len(r.db.voice))
	var n int64
	for _, v := range r.db.voice {
		if v.MatchID == matchID {
			n++
			continue
		}
		kept = append(kept, v)
	}
	r.db.voice = kept
	return n, nil
}

type memCombos struct{ db *memDB }

func (r memCombos) Create(_ context.Context, _ repositories.SQLExecutor, combo *models.Combo) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.matchExists(combo.MatchID) {
		return repositories.ErrMatchInvalid
	}
	id, err := r.db.insert("combos")
	if err != nil {
		return err
	}
	combo.ID = id
	r.db.combos = append(r.db.combos, *combo)
	return nil
}

func (r memCombos) GetByID(_ context.Context, id int) (*models.Combo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.combos {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, repositories.ErrComboNotFound
}

func (r memCombos) ListByMatch(_ context.Context, matchID int) ([]models.Combo, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Combo, 0)
	for _, c := range r.db.combos {
		if c.MatchID == matchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCombos) DeleteByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := make([]models.Combo, 0, len(r.db.combos))
	var n int64
	for _, c := range r.db.combos {
		if c.MatchID == matchID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	r.db.combos = kept
	return n, nil
}

type published struct {
	userID  int
	msgType string
	payload interface{}
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *recordingPublisher) PublishToUser(userID int, msgType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{userID: userID, msgType: msgType, payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	for i, m := range p.messages {
		out[i] = m.msgType
	}
	return out
}
