package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ecanteen/internal/models"
	"ecanteen/internal/repositories"
)

type memPasscodes struct {
	mu      sync.Mutex
	rows    []*models.Passcode
	nextID  int64
	failAll error
}

func (m *memPasscodes) Supersede(_ context.Context, p *models.Passcode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	for _, r := range m.rows {
		if r.Email == p.Email && r.Purpose == p.Purpose && !r.Consumed {
			r.Consumed = true
		}
	}
	m.nextID++
	cp := *p
	cp.ID = m.nextID
	p.ID = cp.ID
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memPasscodes) FindActive(_ context.Context, email, code string, purpose models.PasscodePurpose, now time.Time) (*models.Passcode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	for i := len(m.rows) - 1; i >= 0; i-- {
		r := m.rows[i]
		if r.Email == email && r.Code == code && r.Purpose == purpose && !r.Consumed && r.ExpiresAt.After(now) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memPasscodes) FindLatest(_ context.Context, email, code string, purpose models.PasscodePurpose) (*models.Passcode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.rows) - 1; i >= 0; i-- {
		r := m.rows[i]
		if r.Email == email && r.Code == code && r.Purpose == purpose {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memPasscodes) IncrementAttempts(_ context.Context, email string, purpose models.PasscodePurpose, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.Email == email && r.Purpose == purpose && !r.Consumed && r.ExpiresAt.After(now) {
			r.Attempts++
			if r.Attempts > n {
				n = r.Attempts
			}
		}
	}
	return n, nil
}

func (m *memPasscodes) MarkConsumed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	for _, r := range m.rows {
		if r.ID == id {
			r.Consumed = true
		}
	}
	return nil
}

func (m *memPasscodes) MarkConsumedByCode(_ context.Context, email, code string, purpose models.PasscodePurpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == email && r.Code == code && r.Purpose == purpose {
			r.Consumed = true
		}
	}
	return nil
}

func (m *memPasscodes) ConsumeActive(_ context.Context, email string, purpose models.PasscodePurpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == email && r.Purpose == purpose {
			r.Consumed = true
		}
	}
	return nil
}

func (m *memPasscodes) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return 0, m.failAll
	}
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.ExpiresAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *memPasscodes) unconsumed(email string, purpose models.PasscodePurpose) []*models.Passcode {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*models.Passcode
	for _, r := range m.rows {
		if r.Email == email && r.Purpose == purpose && !r.Consumed {
			res = append(res, r)
		}
	}
	return res
}

func (m *memPasscodes) byID(id int64) *models.Passcode {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp
		}
	}
	return nil
}

func (m *memPasscodes) expire(id int64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			r.ExpiresAt = at
		}
	}
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

func (f *fakeMailer) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type memUsers struct {
	mu             sync.Mutex
	byEmail        map[string]*models.User
	nextID         int64
	failUpdatePass error
	creates        int
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}}
}

func (m *memUsers) put(u *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.byEmail[u.Email] = u
	return u
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return repositories.ErrDuplicate
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	cp := *u
	m.byEmail[u.Email] = &cp
	m.creates++
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, email, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdatePass != nil {
		return m.failUpdatePass
	}
	u, ok := m.byEmail[email]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) MarkVerified(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.EmailVerified = true
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id int64, upd models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID != id {
			continue
		}
		if upd.Fullname != nil {
			u.Fullname = *upd.Fullname
		}
		if upd.Phone != nil {
			u.Phone = *upd.Phone
		}
		if upd.Address != nil {
			u.Address = *upd.Address
		}
		if upd.Avatar != nil {
			u.Avatar = *upd.Avatar
		}
		cp := *u
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

// plainHasher keeps tests fast; bcrypt itself is covered in auth_service_test.go.
type plainHasher struct{}

func (plainHasher) HashPassword(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) ComparePassword(hash, p string) error {
	if hash != "hashed:"+p {
		return errors.New("mismatch")
	}
	return nil
}

type memOrders struct {
	mu       sync.Mutex
	rows     []*models.Order
	countErr error
	notified map[int64]bool
}

func (m *memOrders) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.rows)), nil
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OrderNumber == o.OrderNumber {
			return repositories.ErrDuplicate
		}
	}
	o.ID = int64(len(m.rows) + 1)
	o.CreatedAt = time.Now()
	cp := *o
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memOrders) List(_ context.Context, f models.OrderFilter) ([]*models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*models.Order
	for _, r := range m.rows {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		cp := *r
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	total := int64(len(res))
	if f.Offset >= len(res) {
		return nil, total, nil
	}
	res = res[f.Offset:]
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, total, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			r.Status = status
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memOrders) MarkNotified(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			r.Notified = true
		}
	}
	return nil
}

type memFoodItems struct {
	items map[int64]*models.FoodItem
}

func (m *memFoodItems) List(_ context.Context, f models.FoodItemFilter) ([]*models.FoodItem, error) {
	var res []*models.FoodItem
	for _, it := range m.items {
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		res = append(res, it)
	}
	return res, nil
}

func (m *memFoodItems) GetByID(_ context.Context, id int64) (*models.FoodItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memFoodItems) Categories(context.Context) ([]string, error) { return nil, nil }

func (m *memFoodItems) Create(_ context.Context, it *models.FoodItem) error {
	it.ID = int64(len(m.items) + 1)
	m.items[it.ID] = it
	return nil
}

func (m *memFoodItems) Update(_ context.Context, it *models.FoodItem) error {
	if _, ok := m.items[it.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.items[it.ID] = it
	return nil
}

func (m *memFoodItems) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memRestaurant struct {
	row *models.Restaurant
}

func (m *memRestaurant) Get(context.Context) (*models.Restaurant, error) {
	if m.row == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *m.row
	return &cp, nil
}

func (m *memRestaurant) Create(_ context.Context, r *models.Restaurant) error {
	r.ID = 1
	cp := *r
	m.row = &cp
	return nil
}

func (m *memRestaurant) Update(_ context.Context, r *models.Restaurant) error {
	if m.row == nil || m.row.ID != r.ID {
		return repositories.ErrNotFound
	}
	cp := *r
	m.row = &cp
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []string
	err    error
}

func (n *recordingNotifier) NotifyNewOrder(_ context.Context, o *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.orders = append(n.orders, o.OrderNumber)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, kind string, o *models.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, kind+" "+o.OrderNumber+" "+string(o.Status))
}
