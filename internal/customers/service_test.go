package customers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loyaltyworks/loyalty-backend/internal/audit"
	"github.com/loyaltyworks/loyalty-backend/pkg/db/models"
	"github.com/loyaltyworks/loyalty-backend/pkg/enums"
	pkgerrors "github.com/loyaltyworks/loyalty-backend/pkg/errors"
)

type fakeRepository struct {
	listFn          func(ctx context.Context) ([]models.Customer, error)
	searchFn        func(ctx context.Context, query string) ([]models.Customer, error)
	findByIDFn      func(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	phoneExistsFn   func(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error)
	createFn        func(ctx context.Context, customer *models.Customer) error
	updateFieldsFn  func(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Customer, error)
	updateBalanceFn func(ctx context.Context, id uuid.UUID, expectedPoints int, update BalanceUpdate) (bool, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) List(ctx context.Context) ([]models.Customer, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeRepository) Search(ctx context.Context, query string) ([]models.Customer, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, query)
	}
	return nil, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) PhoneExists(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
	if f.phoneExistsFn != nil {
		return f.phoneExistsFn(ctx, phone, excludeID)
	}
	return false, nil
}

func (f *fakeRepository) Create(ctx context.Context, customer *models.Customer) error {
	if f.createFn != nil {
		return f.createFn(ctx, customer)
	}
	return nil
}

func (f *fakeRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Customer, error) {
	if f.updateFieldsFn != nil {
		return f.updateFieldsFn(ctx, id, fields)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) UpdateBalance(ctx context.Context, id uuid.UUID, expectedPoints int, update BalanceUpdate) (bool, error) {
	if f.updateBalanceFn != nil {
		return f.updateBalanceFn(ctx, id, expectedPoints, update)
	}
	return false, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return 0, nil
}

type fakeRecorder struct {
	entries  []audit.Entry
	recordFn func(ctx context.Context, entry audit.Entry) (*models.AuditLog, error)
}

func (f *fakeRecorder) Record(ctx context.Context, entry audit.Entry) (*models.AuditLog, error) {
	f.entries = append(f.entries, entry)
	if f.recordFn != nil {
		return f.recordFn(ctx, entry)
	}
	return &models.AuditLog{}, nil
}

func newTestService(t *testing.T, repo Repository, rec audit.Recorder) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Recorder: rec})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestCreate_TrimsAndDerivesTier(t *testing.T) {
	repo := &fakeRepository{}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	var created *models.Customer
	repo.createFn = func(ctx context.Context, customer *models.Customer) error {
		customer.ID = uuid.New()
		created = customer
		return nil
	}

	got, err := svc.Create(context.Background(), CreateCustomerInput{
		Name:          "  Nurul Izzah  ",
		Phone:         " +60 12-345 6789 ",
		InitialPoints: 1200,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created == nil {
		t.Fatal("expected store insert")
	}
	if got.Name != "Nurul Izzah" || got.Phone != "+60 12-345 6789" {
		t.Fatalf("inputs not trimmed: %q %q", got.Name, got.Phone)
	}
	if got.Tier != enums.TierGold {
		t.Fatalf("tier not derived: %s", got.Tier)
	}
	if got.PointsRedeemed != 0 {
		t.Fatalf("points_redeemed must start at 0, got %d", got.PointsRedeemed)
	}
}

func TestCreate_EmitsCreatedAndPointsAuditEntries(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, customer *models.Customer) error {
			customer.ID = uuid.New()
			return nil
		},
	}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	if _, err := svc.Create(context.Background(), CreateCustomerInput{
		Name:          "Tan Wei Ming",
		Phone:         "+60 11-111 1111",
		InitialPoints: 150,
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if len(rec.entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(rec.entries))
	}
	if rec.entries[0].ActionType != enums.AuditActionCustomerCreated {
		t.Fatalf("first entry should be customer_created, got %s", rec.entries[0].ActionType)
	}
	if rec.entries[1].ActionType != enums.AuditActionPointsAdded {
		t.Fatalf("second entry should be points_added, got %s", rec.entries[1].ActionType)
	}
	if rec.entries[1].PointsChange == nil || *rec.entries[1].PointsChange != 150 {
		t.Fatalf("points_change should be 150, got %v", rec.entries[1].PointsChange)
	}
}

func TestCreate_ZeroInitialPointsEmitsSingleEntry(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, customer *models.Customer) error {
			customer.ID = uuid.New()
			return nil
		},
	}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	if _, err := svc.Create(context.Background(), CreateCustomerInput{
		Name:  "Tan Wei Ming",
		Phone: "+60 11-111 1111",
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(rec.entries))
	}
	if rec.entries[0].ActionType != enums.AuditActionCustomerCreated {
		t.Fatalf("expected customer_created, got %s", rec.entries[0].ActionType)
	}
}

func TestCreate_DuplicatePhoneFailsBeforeInsert(t *testing.T) {
	inserted := false
	repo := &fakeRepository{
		phoneExistsFn: func(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, customer *models.Customer) error {
			inserted = true
			return nil
		},
	}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	_, err := svc.Create(context.Background(), CreateCustomerInput{
		Name:  "Anyone",
		Phone: "+60 11-111 1111",
	})
	expectCode(t, err, pkgerrors.CodeConflict)
	if inserted {
		t.Fatal("duplicate phone must not reach the store")
	}
	if len(rec.entries) != 0 {
		t.Fatal("duplicate phone must not produce audit entries")
	}
}

func TestCreate_AuditFailureDoesNotFailCreate(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, customer *models.Customer) error {
			customer.ID = uuid.New()
			return nil
		},
	}
	rec := &fakeRecorder{
		recordFn: func(ctx context.Context, entry audit.Entry) (*models.AuditLog, error) {
			return nil, errors.New("audit table unavailable")
		},
	}
	svc := newTestService(t, repo, rec)

	got, err := svc.Create(context.Background(), CreateCustomerInput{
		Name:  "Anyone",
		Phone: "+60 11-111 1111",
	})
	if err != nil {
		t.Fatalf("audit failure must not fail the mutation: %v", err)
	}
	if got == nil {
		t.Fatal("expected created customer despite audit failure")
	}
}

func TestUpdate_PhoneCollisionExcludesSelf(t *testing.T) {
	id := uuid.New()
	var gotExclude *uuid.UUID
	repo := &fakeRepository{
		phoneExistsFn: func(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
			gotExclude = excludeID
			return false, nil
		},
		updateFieldsFn: func(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Customer, error) {
			return &models.Customer{ID: id, Name: "Someone", Phone: fields["phone"].(string)}, nil
		},
	}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	phone := "+60 12-345 6789"
	if _, err := svc.Update(context.Background(), id, UpdateCustomerInput{Phone: &phone}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if gotExclude == nil || *gotExclude != id {
		t.Fatalf("phone check must exclude the customer being updated, got %v", gotExclude)
	}
	if len(rec.entries) != 1 || rec.entries[0].ActionType != enums.AuditActionCustomerUpdated {
		t.Fatalf("expected one customer_updated entry, got %+v", rec.entries)
	}
}

func TestUpdate_DuplicatePhone(t *testing.T) {
	repo := &fakeRepository{
		phoneExistsFn: func(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(t, repo, &fakeRecorder{})

	phone := "+60 12-345 6789"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateCustomerInput{Phone: &phone})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := &fakeRepository{
		updateFieldsFn: func(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Customer, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newTestService(t, repo, &fakeRecorder{})

	name := "New Name"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateCustomerInput{Name: &name})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestAdjustPoints_CrossesTierBoundaryUp(t *testing.T) {
	id := uuid.New()
	current := &models.Customer{ID: id, Name: "Lim", Points: 950, PointsRedeemed: 0, Tier: enums.TierStandard}
	var applied BalanceUpdate
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
			cpy := *current
			return &cpy, nil
		},
		updateBalanceFn: func(ctx context.Context, id uuid.UUID, expectedPoints int, update BalanceUpdate) (bool, error) {
			if expectedPoints != 950 {
				t.Fatalf("guard should use the read balance, got %d", expectedPoints)
			}
			applied = update
			return true, nil
		},
	}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	got, err := svc.AdjustPoints(context.Background(), id, 100)
	if err != nil {
		t.Fatalf("AdjustPoints error: %v", err)
	}
	if got.Points != 1050 || got.Tier != enums.TierGold || got.PointsRedeemed != 0 {
		t.Fatalf("unexpected state after adjustment: %+v", got)
	}
	if applied.Points != 1050 || applied.Tier != enums.TierGold {
		t.Fatalf("unexpected persisted balance: %+v", applied)
	}
	if len(rec.entries) != 1 || rec.entries[0].ActionType != enums.AuditActionPointsAdded {
		t.Fatalf("expected one points_added entry, got %+v", rec.entries)
	}
	if *rec.entries[0].PointsChange != 100 {
		t.Fatalf("points_change should be +100, got %d", *rec.entries[0].PointsChange)
	}
}

func TestAdjustPoints_RedemptionTracksRunningTotal(t *testing.T) {
	id := uuid.New()
	current := &models.Customer{ID: id, Name: "Lim", Points: 1050, PointsRedeemed: 0, Tier: enums.TierGold}
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
			cpy := *current
			return &cpy, nil
		},
		updateBalanceFn: func(ctx context.Context, id uuid.UUID, expectedPoints int, update BalanceUpdate) (bool, error) {
			return true, nil
		},
	}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	got, err := svc.AdjustPoints(context.Background(), id, -1050)
	if err != nil {
		t.Fatalf("AdjustPoints error: %v", err)
	}
	if got.Points != 0 {
		t.Fatalf("expected balance 0, got %d", got.Points)
	}
	if got.PointsRedeemed != 1050 {
		t.Fatalf("points_redeemed should grow by |delta|, got %d", got.PointsRedeemed)
	}
	if got.Tier != enums.TierStandard {
		t.Fatalf("tier should revert to standard, got %s", got.Tier)
	}
	if len(rec.entries) != 1 || rec.entries[0].ActionType != enums.AuditActionPointsRedeemed {
		t.Fatalf("expected one points_redeemed entry, got %+v", rec.entries)
	}
	if *rec.entries[0].PointsChange != -1050 {
		t.Fatalf("points_change should carry the signed delta, got %d", *rec.entries[0].PointsChange)
	}
}

func TestAdjustPoints_ZeroDeltaRejected(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, &fakeRecorder{})
	_, err := svc.AdjustPoints(context.Background(), uuid.New(), 0)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestAdjustPoints_NotFound(t *testing.T) {
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	_, err := svc.AdjustPoints(context.Background(), uuid.New(), 50)
	expectCode(t, err, pkgerrors.CodeNotFound)
	if len(rec.entries) != 0 {
		t.Fatal("failed read must not produce audit entries")
	}
}

func TestAdjustPoints_RetriesOnConcurrentWrite(t *testing.T) {
	id := uuid.New()
	points := 100
	attempts := 0
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
			return &models.Customer{ID: id, Name: "Lim", Points: points, Tier: enums.TierStandard}, nil
		},
		updateBalanceFn: func(ctx context.Context, id uuid.UUID, expectedPoints int, update BalanceUpdate) (bool, error) {
			attempts++
			if attempts == 1 {
				// another writer moved the balance between read and write
				points = 160
				return false, nil
			}
			if expectedPoints != 160 {
				t.Fatalf("retry should re-read the balance, got guard %d", expectedPoints)
			}
			return true, nil
		},
	}
	svc := newTestService(t, repo, &fakeRecorder{})

	got, err := svc.AdjustPoints(context.Background(), id, 40)
	if err != nil {
		t.Fatalf("AdjustPoints error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected a retry, got %d attempts", attempts)
	}
	if got.Points != 200 {
		t.Fatalf("expected 160+40, got %d", got.Points)
	}
}

func TestAdjustPoints_GivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
			return &models.Customer{ID: id, Name: "Lim", Points: 100, Tier: enums.TierStandard}, nil
		},
		updateBalanceFn: func(ctx context.Context, id uuid.UUID, expectedPoints int, update BalanceUpdate) (bool, error) {
			return false, nil
		},
	}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	_, err := svc.AdjustPoints(context.Background(), uuid.New(), 40)
	expectCode(t, err, pkgerrors.CodeConflict)
	if len(rec.entries) != 0 {
		t.Fatal("an adjustment that never applied must not be audited")
	}
}

func TestDelete_AuditsBeforeDelete(t *testing.T) {
	id := uuid.New()
	var calls []string
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
			return &models.Customer{ID: id, Name: "Farah", Phone: "+60 13-000 0000"}, nil
		},
		deleteFn: func(ctx context.Context, id uuid.UUID) (int64, error) {
			calls = append(calls, "delete")
			return 1, nil
		},
	}
	rec := &fakeRecorder{
		recordFn: func(ctx context.Context, entry audit.Entry) (*models.AuditLog, error) {
			calls = append(calls, "audit")
			return &models.AuditLog{}, nil
		},
	}
	svc := newTestService(t, repo, rec)

	ok, err := svc.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if !ok {
		t.Fatal("expected delete to succeed")
	}
	if len(calls) != 2 || calls[0] != "audit" || calls[1] != "delete" {
		t.Fatalf("audit entry must be written before the row is removed, got %v", calls)
	}
	if len(rec.entries) != 1 || rec.entries[0].ActionType != enums.AuditActionCustomerDeleted {
		t.Fatalf("expected one customer_deleted entry, got %+v", rec.entries)
	}
	if rec.entries[0].CustomerID != id || rec.entries[0].CustomerName != "Farah" {
		t.Fatalf("audit entry must carry the pre-deletion profile, got %+v", rec.entries[0])
	}
}

func TestDelete_UnreadableRowSkipsAuditAndStore(t *testing.T) {
	deleted := false
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
			return nil, gorm.ErrRecordNotFound
		},
		deleteFn: func(ctx context.Context, id uuid.UUID) (int64, error) {
			deleted = true
			return 0, nil
		},
	}
	rec := &fakeRecorder{}
	svc := newTestService(t, repo, rec)

	_, err := svc.Delete(context.Background(), uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
	if deleted {
		t.Fatal("unreadable customer must not be deleted")
	}
	if len(rec.entries) != 0 {
		t.Fatal("unreadable customer must not be audited")
	}
}

func TestListAndSearch_SoftFailToEmpty(t *testing.T) {
	repo := &fakeRepository{
		listFn: func(ctx context.Context) ([]models.Customer, error) {
			return nil, errors.New("store unavailable")
		},
		searchFn: func(ctx context.Context, query string) ([]models.Customer, error) {
			return nil, errors.New("store unavailable")
		},
	}
	svc := newTestService(t, repo, &fakeRecorder{})

	if got := svc.List(context.Background()); len(got) != 0 {
		t.Fatalf("List should soft-fail to empty, got %d rows", len(got))
	}
	if got := svc.Search(context.Background(), "lim"); len(got) != 0 {
		t.Fatalf("Search should soft-fail to empty, got %d rows", len(got))
	}
}

func TestPhoneExists_TrimsAndPropagatesStoreErrors(t *testing.T) {
	var gotPhone string
	repo := &fakeRepository{
		phoneExistsFn: func(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
			gotPhone = phone
			return true, nil
		},
	}
	svc := newTestService(t, repo, &fakeRecorder{})

	exists, err := svc.PhoneExists(context.Background(), "  +60 12-345 6789  ", nil)
	if err != nil {
		t.Fatalf("PhoneExists error: %v", err)
	}
	if !exists {
		t.Fatal("expected true")
	}
	if gotPhone != "+60 12-345 6789" {
		t.Fatalf("phone should be trimmed before the lookup, got %q", gotPhone)
	}

	repo.phoneExistsFn = func(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
		return false, errors.New("store unavailable")
	}
	_, err = svc.PhoneExists(context.Background(), "+60 12-345 6789", nil)
	expectCode(t, err, pkgerrors.CodeDependency)
}
