package clinic

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type mockRepo struct {
	visits map[uuid.UUID]*Visit
}

func newMockRepo() *mockRepo {
	return &mockRepo{visits: make(map[uuid.UUID]*Visit)}
}

func (m *mockRepo) Create(_ context.Context, v *Visit) error {
	v.ID = uuid.New()
	cp := *v
	m.visits[v.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Visit, error) {
	v, ok := m.visits[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return v, nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.visits, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]Visit, int, error) {
	all, _ := m.ListAll(context.Background())
	return all, len(all), nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]Visit, error) {
	var all []Visit
	for _, v := range m.visits {
		all = append(all, *v)
	}
	return all, nil
}

func fixedClock(svc *Service, at time.Time) {
	svc.now = func() time.Time { return at }
}

func TestRecordVisit(t *testing.T) {
	svc := NewService(newMockRepo())
	at := day(2025, 6, 11, 10)
	fixedClock(svc, at)

	v := &Visit{
		Name: "Alice", NationalID: "A-1001", Age: 34, Address: "7 Elm St",
		VisitType: VisitCheckup, DoctorID: "admin-1",
	}
	if err := svc.RecordVisit(context.Background(), v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.VisitAt == nil || !v.VisitAt.Equal(at) {
		t.Errorf("expected server-assigned visit time %v, got %v", at, v.VisitAt)
	}
	if v.Price != "200" {
		t.Errorf("expected checkup default price 200, got %s", v.Price)
	}

	got, err := svc.GetVisit(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.NationalID != "A-1001" || got.Age != 34 || got.Address != "7 Elm St" {
		t.Errorf("patient fields not stored: %+v", got)
	}
	if got.DoctorID != "admin-1" {
		t.Errorf("expected owning doctor admin-1, got %s", got.DoctorID)
	}
}

func TestRecordVisit_FollowupDefaultPrice(t *testing.T) {
	svc := NewService(newMockRepo())
	v := &Visit{Name: "Bob", VisitType: VisitFollowup}
	if err := svc.RecordVisit(context.Background(), v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Price != "120" {
		t.Errorf("expected followup default price 120, got %s", v.Price)
	}
}

func TestRecordVisit_ExplicitPriceKept(t *testing.T) {
	svc := NewService(newMockRepo())
	v := &Visit{Name: "Carol", VisitType: VisitCheckup, Price: "250"}
	if err := svc.RecordVisit(context.Background(), v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Price != "250" {
		t.Errorf("expected explicit price kept, got %s", v.Price)
	}
}

func TestRecordVisit_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.RecordVisit(context.Background(), &Visit{VisitType: VisitCheckup}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.RecordVisit(context.Background(), &Visit{Name: "Dan", VisitType: "house-call"}); err == nil {
		t.Error("expected error for invalid visit type")
	}
	if err := svc.RecordVisit(context.Background(), &Visit{Name: "Eve", VisitType: VisitCheckup, Age: -1}); err == nil {
		t.Error("expected error for negative age")
	}
}

func TestGetSummary(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	fixedClock(svc, day(2025, 6, 11, 14))

	at := day(2025, 6, 11, 8)
	repo.Create(context.Background(), &Visit{Name: "Alice", Price: "200", VisitAt: &at})
	repo.Create(context.Background(), &Visit{Name: "Bad", Price: "n/a", VisitAt: &at})

	sum, err := svc.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Today.Count != 2 || !sum.Today.Income.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected 2 visits / 200 income today, got %d/%s", sum.Today.Count, sum.Today.Income)
	}
}

func TestBrowseVisits(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	in := day(2025, 6, 10, 9)
	out := day(2025, 6, 20, 9)
	repo.Create(context.Background(), &Visit{Name: "inside", VisitAt: &in})
	repo.Create(context.Background(), &Visit{Name: "outside", VisitAt: &out})

	got, err := svc.BrowseVisits(context.Background(), day(2025, 6, 10, 0), day(2025, 6, 12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "inside" {
		t.Errorf("expected only the in-range visit, got %+v", got)
	}
}
