package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/codequesthq/codequest-backend/internal/model"
)

// The fakes below mirror the pgx repositories' contract: absent rows and
// conflict-suppressed inserts both come back as pgx.ErrNoRows.

type pairKey struct {
	competitionID uuid.UUID
	studentID     int
}

type fakeCompetitionStore struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*model.Competition
	seq   int
	saved int // UpdateDerived call count
}

func newFakeCompetitionStore() *fakeCompetitionStore {
	return &fakeCompetitionStore{rows: make(map[uuid.UUID]*model.Competition)}
}

func (f *fakeCompetitionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Competition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompetitionStore) Create(_ context.Context, c *model.Competition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	c.ID = uuid.New()
	c.SeqID = f.seq
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCompetitionStore) Update(_ context.Context, c *model.Competition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCompetitionStore) UpdateDerived(_ context.Context, c *model.Competition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	row.Status = c.Status
	row.EndAt = c.EndAt
	row.IsLive = c.IsLive
	row.Archived = c.Archived
	f.saved++
	return nil
}

func (f *fakeCompetitionStore) ListByCreatorPaginated(_ context.Context, creatorID, limit, offset int) ([]model.Competition, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Competition
	for _, c := range f.rows {
		if c.CreatorID == creatorID {
			all = append(all, *c)
		}
	}
	total := len(all)
	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeCompetitionStore) ListLive(_ context.Context) ([]model.Competition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Competition
	for _, c := range f.rows {
		if c.IsLive && !c.Archived {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCompetitionStore) ListScheduled(_ context.Context) ([]model.Competition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Competition
	for _, c := range f.rows {
		if c.AvailableFrom != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCompetitionStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

type fakeParticipantStore struct {
	mu   sync.Mutex
	rows map[pairKey]*model.Participant
}

func newFakeParticipantStore() *fakeParticipantStore {
	return &fakeParticipantStore{rows: make(map[pairKey]*model.Participant)}
}

func (f *fakeParticipantStore) Create(_ context.Context, p *model.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := pairKey{p.CompetitionID, p.StudentID}
	if _, ok := f.rows[k]; ok {
		return pgx.ErrNoRows
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	cp := *p
	f.rows[k] = &cp
	return nil
}

func (f *fakeParticipantStore) Exists(_ context.Context, competitionID uuid.UUID, studentID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[pairKey{competitionID, studentID}]
	return ok, nil
}

func (f *fakeParticipantStore) ListStudentIDs(_ context.Context, competitionID uuid.UUID) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for k := range f.rows {
		if k.competitionID == competitionID {
			out = append(out, k.studentID)
		}
	}
	return out, nil
}

func (f *fakeParticipantStore) ListCompetitionIDs(_ context.Context, studentID int) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for k := range f.rows {
		if k.studentID == studentID {
			out = append(out, k.competitionID)
		}
	}
	return out, nil
}

func (f *fakeParticipantStore) Count(_ context.Context, competitionID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.rows {
		if k.competitionID == competitionID {
			n++
		}
	}
	return n, nil
}

type fakeStudentStore struct {
	mu   sync.Mutex
	rows map[int]*model.Student
}

func newFakeStudentStore(students ...*model.Student) *fakeStudentStore {
	f := &fakeStudentStore{rows: make(map[int]*model.Student)}
	for _, s := range students {
		f.rows[s.ID] = s
	}
	return f
}

func (f *fakeStudentStore) GetByID(_ context.Context, id int) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeStudentStore) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.rows {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeTeacherStore struct {
	rows map[int]*model.Teacher
}

func newFakeTeacherStore(teachers ...*model.Teacher) *fakeTeacherStore {
	f := &fakeTeacherStore{rows: make(map[int]*model.Teacher)}
	for _, t := range teachers {
		f.rows[t.ID] = t
	}
	return f
}

func (f *fakeTeacherStore) GetByID(_ context.Context, id int) (*model.Teacher, error) {
	t, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (f *fakeTeacherStore) GetByEmail(_ context.Context, email string) (*model.Teacher, error) {
	for _, t := range f.rows {
		if t.Email == email {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeSubmissionStore struct {
	mu   sync.Mutex
	rows map[pairKey]*model.Submission
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{rows: make(map[pairKey]*model.Submission)}
}

func (f *fakeSubmissionStore) Create(_ context.Context, s *model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := pairKey{s.CompetitionID, s.StudentID}
	if _, ok := f.rows[k]; ok {
		return pgx.ErrNoRows
	}
	cp := *s
	f.rows[k] = &cp
	return nil
}

func (f *fakeSubmissionStore) GetByPair(_ context.Context, competitionID uuid.UUID, studentID int) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[pairKey{competitionID, studentID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubmissionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.rows {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubmissionStore) Exists(_ context.Context, competitionID uuid.UUID, studentID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[pairKey{competitionID, studentID}]
	return ok, nil
}

type fakeResultStore struct {
	mu   sync.Mutex
	rows map[pairKey]*model.CompetitionResult
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{rows: make(map[pairKey]*model.CompetitionResult)}
}

func (f *fakeResultStore) Create(_ context.Context, res *model.CompetitionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := pairKey{res.CompetitionID, res.StudentID}
	if _, ok := f.rows[k]; ok {
		return pgx.ErrNoRows
	}
	cp := *res
	f.rows[k] = &cp
	return nil
}

func (f *fakeResultStore) UpdateGrades(_ context.Context, res *model.CompetitionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := pairKey{res.CompetitionID, res.StudentID}
	if _, ok := f.rows[k]; !ok {
		return pgx.ErrNoRows
	}
	cp := *res
	f.rows[k] = &cp
	return nil
}

func (f *fakeResultStore) GetByPair(_ context.Context, competitionID uuid.UUID, studentID int) (*model.CompetitionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.rows[pairKey{competitionID, studentID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *res
	return &cp, nil
}

func (f *fakeResultStore) ExistsForCompetition(_ context.Context, competitionID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.rows {
		if k.competitionID == competitionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeResultStore) Stats(_ context.Context, competitionID uuid.UUID) (*model.CompetitionStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &model.CompetitionStats{CompetitionID: competitionID}
	sum := 0
	for k, res := range f.rows {
		if k.competitionID != competitionID {
			continue
		}
		stats.TotalSubmissions++
		if res.IsGraded {
			stats.GradedCount++
			sum += res.TotalScore
			if res.TotalScore > stats.MaxScore {
				stats.MaxScore = res.TotalScore
			}
		}
	}
	if stats.GradedCount > 0 {
		stats.AverageScore = float64(sum) / float64(stats.GradedCount)
	}
	return stats, nil
}

func (f *fakeResultStore) Leaderboard(_ context.Context, competitionID uuid.UUID, limit int) ([]model.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LeaderboardEntry
	for k, res := range f.rows {
		if k.competitionID != competitionID || !res.IsGraded {
			continue
		}
		out = append(out, model.LeaderboardEntry{
			StudentID:       res.StudentID,
			TotalScore:      res.TotalScore,
			PercentageScore: res.PercentageScore,
		})
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].TotalScore > out[i].TotalScore {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeDisqualificationStore struct {
	mu   sync.Mutex
	rows map[pairKey]*model.Disqualification
}

func newFakeDisqualificationStore() *fakeDisqualificationStore {
	return &fakeDisqualificationStore{rows: make(map[pairKey]*model.Disqualification)}
}

func (f *fakeDisqualificationStore) Create(_ context.Context, d *model.Disqualification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := pairKey{d.CompetitionID, d.StudentID}
	if _, ok := f.rows[k]; ok {
		return pgx.ErrNoRows
	}
	if d.DisqualifiedAt.IsZero() {
		d.DisqualifiedAt = time.Now()
	}
	cp := *d
	f.rows[k] = &cp
	return nil
}

func (f *fakeDisqualificationStore) GetByPair(_ context.Context, competitionID uuid.UUID, studentID int) (*model.Disqualification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[pairKey{competitionID, studentID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDisqualificationStore) ListByCompetition(_ context.Context, competitionID uuid.UUID) ([]model.Disqualification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Disqualification
	for k, d := range f.rows {
		if k.competitionID == competitionID {
			out = append(out, *d)
		}
	}
	return out, nil
}
