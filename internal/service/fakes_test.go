package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"carwash/internal/model"
	"carwash/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// passthroughTx runs fn directly; fakes have no rollback.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// fakeStore backs every fake repository of one test.
type fakeStore struct {
	mu          sync.Mutex
	roles       map[uuid.UUID]*model.Role
	perms       map[uuid.UUID]*model.Permission
	grants      map[uuid.UUID]*model.RolePermission
	users       map[uuid.UUID]*model.User
	audits      []model.AuditLog
	employees   map[uuid.UUID]*model.Employee
	positions   map[string]*model.PositionSalary
	attendance  []model.Attendance
	payrolls    map[uuid.UUID]*model.Payroll
	roleDeletes int
	failRoleFor string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles:     map[uuid.UUID]*model.Role{},
		perms:     map[uuid.UUID]*model.Permission{},
		grants:    map[uuid.UUID]*model.RolePermission{},
		users:     map[uuid.UUID]*model.User{},
		employees: map[uuid.UUID]*model.Employee{},
		positions: map[string]*model.PositionSalary{},
		payrolls:  map[uuid.UUID]*model.Payroll{},
	}
}

// --- roles ---

type fakeRoleRepo struct{ s *fakeStore }

func (r fakeRoleRepo) Create(_ context.Context, role *model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if role.Name == r.s.failRoleFor {
		return gorm.ErrInvalidDB
	}
	for _, existing := range r.s.roles {
		if existing.Name == role.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	cp := *role
	r.s.roles[role.ID] = &cp
	return nil
}

func (r fakeRoleRepo) Update(_ context.Context, role *model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *role
	r.s.roles[role.ID] = &cp
	return nil
}

func (r fakeRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roleDeletes++
	delete(r.s.roles, id)
	return nil
}

func (r fakeRoleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *role
	return &cp, nil
}

func (r fakeRoleRepo) FindByName(_ context.Context, name string) (*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			cp := *role
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeRoleRepo) ListAll(_ context.Context) ([]model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, *role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- permissions ---

type fakePermRepo struct {
	s         *fakeStore
	findCalls *int
}

func (r fakePermRepo) Create(_ context.Context, p *model.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.perms {
		if existing.Name == p.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.perms[p.ID] = &cp
	return nil
}

func (r fakePermRepo) FindByName(_ context.Context, name string) (*model.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.perms {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakePermRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.findCalls != nil {
		*r.findCalls++
	}
	out := []model.Permission{}
	for _, id := range ids {
		if p, ok := r.s.perms[id]; ok {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakePermRepo) ListAll(_ context.Context) ([]model.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Permission, 0, len(r.s.perms))
	for _, p := range r.s.perms {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakePermRepo) ListByModule(ctx context.Context, module string) ([]model.Permission, error) {
	all, _ := r.ListAll(ctx)
	out := []model.Permission{}
	for _, p := range all {
		if p.Module == module {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakePermRepo) FindOrCreate(ctx context.Context, p *model.Permission) (bool, error) {
	existing, err := r.FindByName(ctx, p.Name)
	if err == nil {
		*p = *existing
		return false, nil
	}
	return true, r.Create(ctx, p)
}

// --- grants ---

type fakeRolePermRepo struct{ s *fakeStore }

func (r fakeRolePermRepo) Create(_ context.Context, rp *model.RolePermission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.grants {
		if g.RoleID == rp.RoleID && g.PermissionID == rp.PermissionID {
			return gorm.ErrDuplicatedKey
		}
	}
	if rp.ID == uuid.Nil {
		rp.ID = uuid.New()
	}
	cp := *rp
	r.s.grants[rp.ID] = &cp
	return nil
}

func (r fakeRolePermRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.grants, id)
	return nil
}

func (r fakeRolePermRepo) DeleteByRole(_ context.Context, roleID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, g := range r.s.grants {
		if g.RoleID == roleID {
			delete(r.s.grants, id)
		}
	}
	return nil
}

func (r fakeRolePermRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RolePermission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.grants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (r fakeRolePermRepo) FindByRoleAndPermission(_ context.Context, roleID, permissionID uuid.UUID) (*model.RolePermission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.grants {
		if g.RoleID == roleID && g.PermissionID == permissionID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeRolePermRepo) ListByRole(_ context.Context, roleID uuid.UUID) ([]model.RolePermission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.RolePermission{}
	for _, g := range r.s.grants {
		if g.RoleID == roleID {
			out = append(out, *g)
		}
	}
	return out, nil
}

// --- users ---

type fakeUserRepo struct{ s *fakeStore }

func (r fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeUserRepo) List(_ context.Context, _, _ int, _ string) ([]model.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.User{}
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r fakeUserRepo) Update(ctx context.Context, u *model.User) error {
	return r.Create(ctx, u)
}

func (r fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r fakeUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r fakeUserRepo) RenameRole(_ context.Context, oldName, newName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Role == oldName {
			u.Role = newName
		}
	}
	return nil
}

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*model.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[uuid.UUID]*model.RefreshToken{}}
}

func (r *fakeRefreshRepo) Create(_ context.Context, t *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.New()
	cp := *t
	r.tokens[t.ID] = &cp
	return nil
}

func (r *fakeRefreshRepo) FindValid(_ context.Context, token string, now time.Time) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == token && t.ExpiresAt.After(now) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
	return nil
}

func (r *fakeRefreshRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

// --- audit ---

type fakeAuditRepo struct{ s *fakeStore }

func (r fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, *entry)
	return nil
}

func (r fakeAuditRepo) List(_ context.Context, _ string, _, _ int) ([]model.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.AuditLog(nil), r.s.audits...), int64(len(r.s.audits)), nil
}

// --- payroll inputs ---

type fakeEmployeeRepo struct{ s *fakeStore }

func (r fakeEmployeeRepo) Create(_ context.Context, e *model.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	r.s.employees[e.ID] = &cp
	return nil
}

func (r fakeEmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	return r.Create(ctx, e)
}

func (r fakeEmployeeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.employees, id)
	return nil
}

func (r fakeEmployeeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r fakeEmployeeRepo) List(_ context.Context, _ repository.EmployeeFilter, _, _ int) ([]model.Employee, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Employee{}
	for _, e := range r.s.employees {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r fakeEmployeeRepo) CountActive(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, e := range r.s.employees {
		if e.IsActive {
			n++
		}
	}
	return n, nil
}

type fakePositionRepo struct {
	s   *fakeStore
	err error
}

func (r fakePositionRepo) Create(_ context.Context, ps *model.PositionSalary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ps.ID == uuid.Nil {
		ps.ID = uuid.New()
	}
	cp := *ps
	r.s.positions[ps.Position] = &cp
	return nil
}

func (r fakePositionRepo) Update(ctx context.Context, ps *model.PositionSalary) error {
	return r.Create(ctx, ps)
}

func (r fakePositionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, ps := range r.s.positions {
		if ps.ID == id {
			delete(r.s.positions, k)
		}
	}
	return nil
}

func (r fakePositionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PositionSalary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ps := range r.s.positions {
		if ps.ID == id {
			cp := *ps
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakePositionRepo) FindByPosition(_ context.Context, position string) (*model.PositionSalary, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ps, ok := r.s.positions[position]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ps
	return &cp, nil
}

func (r fakePositionRepo) ListAll(_ context.Context) ([]model.PositionSalary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.PositionSalary{}
	for _, ps := range r.s.positions {
		out = append(out, *ps)
	}
	return out, nil
}

type fakeAttendanceRepo struct{ s *fakeStore }

func (r fakeAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.attendance {
		if existing.EmployeeID == a.EmployeeID && existing.Date.Equal(a.Date) {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.s.attendance = append(r.s.attendance, *a)
	return nil
}

func (r fakeAttendanceRepo) Update(_ context.Context, a *model.Attendance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.attendance {
		if r.s.attendance[i].ID == a.ID {
			r.s.attendance[i] = *a
		}
	}
	return nil
}

func (r fakeAttendanceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.attendance {
		if r.s.attendance[i].ID == id {
			r.s.attendance = append(r.s.attendance[:i], r.s.attendance[i+1:]...)
			break
		}
	}
	return nil
}

func (r fakeAttendanceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.attendance {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeAttendanceRepo) FindByEmployeeAndDate(_ context.Context, employeeID uuid.UUID, date time.Time) (*model.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.attendance {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			cp := a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeAttendanceRepo) List(_ context.Context, _ repository.AttendanceFilter, _, _ int) ([]model.Attendance, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]model.Attendance(nil), r.s.attendance...)
	return out, int64(len(out)), nil
}

func (r fakeAttendanceRepo) CountByStatus(_ context.Context, employeeID uuid.UUID, from, to time.Time, status model.AttendanceStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.attendance {
		if a.EmployeeID == employeeID && a.Status == status && !a.Date.Before(from) && !a.Date.After(to) {
			n++
		}
	}
	return n, nil
}

type fakePayrollRepo struct{ s *fakeStore }

func (r fakePayrollRepo) Create(_ context.Context, p *model.Payroll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payrolls {
		if existing.EmployeeID == p.EmployeeID && existing.PaymentType == p.PaymentType &&
			existing.PeriodStart.Equal(p.PeriodStart) && existing.PeriodEnd.Equal(p.PeriodEnd) {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.payrolls[p.ID] = &cp
	return nil
}

func (r fakePayrollRepo) Update(_ context.Context, p *model.Payroll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.payrolls[p.ID] = &cp
	return nil
}

func (r fakePayrollRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.payrolls, id)
	return nil
}

func (r fakePayrollRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Payroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payrolls[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakePayrollRepo) List(_ context.Context, _ repository.PayrollFilter, _, _ int) ([]model.Payroll, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Payroll{}
	for _, p := range r.s.payrolls {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}
