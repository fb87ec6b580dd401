package usecase

import (
	"context"
	"errors"
	"io"
	"maps"
	"sort"
	"sync"
	"time"

	"go-reservation-store/internal/domain/entity"
	"go-reservation-store/internal/domain/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func pgError(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

// fakeTransactor runs transactions one at a time, standing in for the row
// locks of the real database. serialize=false lets them interleave freely.
// With store set, a failed transaction restores the store as it was.
type fakeTransactor struct {
	serialize bool
	mu        sync.Mutex
	err       error
	store     *memStore
}

func (t *fakeTransactor) DB(ctx context.Context) *gorm.DB {
	return nil
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if t.err != nil {
		return t.err
	}
	if t.serialize {
		t.mu.Lock()
		defer t.mu.Unlock()
	}
	if t.store == nil {
		return fn(nil)
	}

	saved := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(saved)
		return err
	}
	return nil
}

var _ repository.Transactor = (*fakeTransactor)(nil)

// memStore backs every fake repository and enforces the same constraints as
// the migrations, reporting them with the real constraint names.
type memStore struct {
	mu sync.Mutex

	roles         map[int]entity.Role
	users         map[int]entity.User
	schedules     map[int]entity.Schedule
	availability  map[entity.Slot]entity.AvailabilityDate
	reservations  map[int]entity.Reservation
	blockedTokens map[string]entity.BlockedToken

	nextID int
	// findSlotHook runs inside reservation FindBySlot, after the lookup
	findSlotHook func()

	roleLocks   int
	roleLockErr error
}

func newMemStore() *memStore {
	return &memStore{
		roles:         make(map[int]entity.Role),
		users:         make(map[int]entity.User),
		schedules:     make(map[int]entity.Schedule),
		availability:  make(map[entity.Slot]entity.AvailabilityDate),
		reservations:  make(map[int]entity.Reservation),
		blockedTokens: make(map[string]entity.BlockedToken),
	}
}

type memSnapshot struct {
	roles         map[int]entity.Role
	users         map[int]entity.User
	schedules     map[int]entity.Schedule
	availability  map[entity.Slot]entity.AvailabilityDate
	reservations  map[int]entity.Reservation
	blockedTokens map[string]entity.BlockedToken
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		roles:         maps.Clone(s.roles),
		users:         maps.Clone(s.users),
		schedules:     maps.Clone(s.schedules),
		availability:  maps.Clone(s.availability),
		reservations:  maps.Clone(s.reservations),
		blockedTokens: maps.Clone(s.blockedTokens),
	}
}

func (s *memStore) restore(saved memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = saved.roles
	s.users = saved.users
	s.schedules = saved.schedules
	s.availability = saved.availability
	s.reservations = saved.reservations
	s.blockedTokens = saved.blockedTokens
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

// Roles

type fakeRoleRepo struct{ s *memStore }

func (r fakeRoleRepo) Create(ctx context.Context, db *gorm.DB, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role.ID = r.s.id()
	r.s.roles[role.ID] = *role
	return nil
}

func (r fakeRoleRepo) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (r fakeRoleRepo) FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			return &role, nil
		}
	}
	return nil, nil
}

func (r fakeRoleRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	roles := make([]entity.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

func (r fakeRoleRepo) LockForSeeding(ctx context.Context, db *gorm.DB) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.roleLockErr != nil {
		return r.s.roleLockErr
	}
	r.s.roleLocks++
	return nil
}

// Users

type fakeUserRepo struct{ s *memStore }

func (r fakeUserRepo) checkUnique(user *entity.User) error {
	if _, ok := r.s.roles[user.RoleID]; !ok {
		return pgError(pgForeignKeyViolation, "user_role_id_fkey")
	}
	for _, other := range r.s.users {
		if other.ID == user.ID {
			continue
		}
		if other.DNI == user.DNI {
			return pgError(pgUniqueViolation, "user_dni_key")
		}
		if other.Email == user.Email {
			return pgError(pgUniqueViolation, "user_email_key")
		}
	}
	return nil
}

func (r fakeUserRepo) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkUnique(user); err != nil {
		return err
	}
	user.ID = r.s.id()
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	user.Role = r.s.roles[user.RoleID]
	return &user, nil
}

func (r fakeUserRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.UserFilter) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]entity.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		if filter.RoleID != 0 && user.RoleID != filter.RoleID {
			continue
		}
		if filter.ActiveOnly && !user.Active() {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r fakeUserRepo) Update(ctx context.Context, db *gorm.DB, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkUnique(user); err != nil {
		return err
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) SetActive(ctx context.Context, db *gorm.DB, id int, active bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return 0, nil
	}
	user.IsActive = &active
	r.s.users[id] = user
	return 1, nil
}

// Schedules

type fakeScheduleRepo struct{ s *memStore }

func (r fakeScheduleRepo) Create(ctx context.Context, db *gorm.DB, schedule *entity.Schedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	schedule.ID = r.s.id()
	r.s.schedules[schedule.ID] = *schedule
	return nil
}

func (r fakeScheduleRepo) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	schedule, ok := r.s.schedules[id]
	if !ok {
		return nil, nil
	}
	return &schedule, nil
}

func (r fakeScheduleRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.ScheduleFilter) ([]entity.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	schedules := make([]entity.Schedule, 0, len(r.s.schedules))
	for _, schedule := range r.s.schedules {
		if !filter.From.IsZero() && schedule.Time.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && schedule.Time.After(filter.To) {
			continue
		}
		schedules = append(schedules, schedule)
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].ID < schedules[j].ID })
	return schedules, nil
}

// Availability

type fakeAvailabilityRepo struct{ s *memStore }

func (r fakeAvailabilityRepo) Upsert(ctx context.Context, db *gorm.DB, availability *entity.AvailabilityDate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.schedules[availability.TimeID]; !ok {
		return pgError(pgForeignKeyViolation, "availability_dates_time_id_fkey")
	}
	slot := availability.Slot()
	if existing, ok := r.s.availability[slot]; ok {
		availability.ID = existing.ID
	} else {
		availability.ID = r.s.id()
	}
	r.s.availability[slot] = *availability
	return nil
}

func (r fakeAvailabilityRepo) FindBySlot(ctx context.Context, db *gorm.DB, scheduleID int, date time.Time) (*entity.AvailabilityDate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	availability, ok := r.s.availability[entity.NewSlot(scheduleID, date)]
	if !ok {
		return nil, nil
	}
	return &availability, nil
}

func (r fakeAvailabilityRepo) FindBySlotForUpdate(ctx context.Context, db *gorm.DB, scheduleID int, date time.Time) (*entity.AvailabilityDate, error) {
	return r.FindBySlot(ctx, db, scheduleID, date)
}

func (r fakeAvailabilityRepo) FindByScheduleID(ctx context.Context, db *gorm.DB, scheduleID int) ([]entity.AvailabilityDate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]entity.AvailabilityDate, 0)
	for _, availability := range r.s.availability {
		if availability.TimeID == scheduleID {
			rows = append(rows, availability)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

func (r fakeAvailabilityRepo) FindByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]entity.AvailabilityDate, error) {
	day := entity.DateOf(date)
	rows := r.filter(func(a entity.AvailabilityDate) bool { return a.Date.Equal(day) })
	sort.Slice(rows, func(i, j int) bool { return rows[i].TimeID < rows[j].TimeID })
	return rows, nil
}

func (r fakeAvailabilityRepo) FindClosed(ctx context.Context, db *gorm.DB, filter entity.AvailabilityFilter) ([]entity.AvailabilityDate, error) {
	rows := r.filter(func(a entity.AvailabilityDate) bool {
		if a.IsAvailable() {
			return false
		}
		if !filter.From.IsZero() && a.Date.Before(entity.DateOf(filter.From)) {
			return false
		}
		if !filter.To.IsZero() && a.Date.After(entity.DateOf(filter.To)) {
			return false
		}
		return true
	})
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].TimeID < rows[j].TimeID
	})
	return rows, nil
}

func (r fakeAvailabilityRepo) filter(keep func(entity.AvailabilityDate) bool) []entity.AvailabilityDate {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]entity.AvailabilityDate, 0)
	for _, availability := range r.s.availability {
		if keep(availability) {
			rows = append(rows, availability)
		}
	}
	return rows
}

func (r fakeAvailabilityRepo) Delete(ctx context.Context, db *gorm.DB, id int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for slot, availability := range r.s.availability {
		if availability.ID == id {
			delete(r.s.availability, slot)
			return 1, nil
		}
	}
	return 0, nil
}

// Reservations

type fakeReservationRepo struct {
	s         *memStore
	createErr error
}

func (r fakeReservationRepo) Create(ctx context.Context, db *gorm.DB, reservation *entity.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.s.users[reservation.UserID]; !ok {
		return pgError(pgForeignKeyViolation, "reservation_user_id_fkey")
	}
	if _, ok := r.s.schedules[reservation.TimeID]; !ok {
		return pgError(pgForeignKeyViolation, "reservation_time_id_fkey")
	}
	for _, other := range r.s.reservations {
		if other.Slot() == reservation.Slot() {
			return pgError(pgUniqueViolation, "reservation_slot_key")
		}
	}
	reservation.ID = r.s.id()
	r.s.reservations[reservation.ID] = *reservation
	return nil
}

func (r fakeReservationRepo) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reservation, ok := r.s.reservations[id]
	if !ok {
		return nil, nil
	}
	return &reservation, nil
}

func (r fakeReservationRepo) FindBySlot(ctx context.Context, db *gorm.DB, scheduleID int, date time.Time) (*entity.Reservation, error) {
	r.s.mu.Lock()
	var found *entity.Reservation
	for _, reservation := range r.s.reservations {
		if reservation.Slot() == entity.NewSlot(scheduleID, date) {
			reservation := reservation
			found = &reservation
			break
		}
	}
	hook := r.s.findSlotHook
	r.s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return found, nil
}

func (r fakeReservationRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID int) ([]entity.Reservation, error) {
	return r.filter(func(res entity.Reservation) bool { return res.UserID == userID }), nil
}

func (r fakeReservationRepo) FindByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]entity.Reservation, error) {
	day := entity.DateOf(date)
	return r.filter(func(res entity.Reservation) bool { return res.Date.Equal(day) }), nil
}

func (r fakeReservationRepo) filter(keep func(entity.Reservation) bool) []entity.Reservation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reservations := make([]entity.Reservation, 0)
	for _, reservation := range r.s.reservations {
		if keep(reservation) {
			reservations = append(reservations, reservation)
		}
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations
}

func (r fakeReservationRepo) Delete(ctx context.Context, db *gorm.DB, id int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reservations[id]; !ok {
		return 0, nil
	}
	delete(r.s.reservations, id)
	return 1, nil
}

// Blocked tokens

type fakeBlockedTokenRepo struct {
	s   *memStore
	err error
}

func (r fakeBlockedTokenRepo) Create(ctx context.Context, db *gorm.DB, token *entity.BlockedToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.s.blockedTokens[token.JTI]; ok {
		return pgError(pgUniqueViolation, "blocked_token_list_jti_key")
	}
	token.ID = r.s.id()
	r.s.blockedTokens[token.JTI] = *token
	return nil
}

func (r fakeBlockedTokenRepo) FindActiveByJTI(ctx context.Context, db *gorm.DB, jti string, now time.Time) (*entity.BlockedToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	token, ok := r.s.blockedTokens[jti]
	if !ok || token.IsExpired(now) {
		return nil, nil
	}
	return &token, nil
}

func (r fakeBlockedTokenRepo) DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var purged int64
	for jti, token := range r.s.blockedTokens {
		if token.IsExpired(now) {
			delete(r.s.blockedTokens, jti)
			purged++
		}
	}
	return purged, nil
}

var errDatabaseDown = errors.New("connection refused")
